package respira

import (
	Rp "github.com/maroda/respira/plugin"
	Rt "github.com/maroda/respira/types"
)

// BreathFrequency estimates breaths per second from RR intervals.
//
// Respiratory sinus arrhythmia stretches and shortens the RR interval with
// each breath, so every local maximum of the interval series is one breath.
// The count is taken in beat order, not time, and divided by the segment
// length. Less than three intervals cannot hold a maximum and give 0.
func BreathFrequency(rr []Rt.RRInterval, seconds float64, counter Rp.PeakCounter) float64 {
	if len(rr) < 3 || seconds <= 0 || counter == nil {
		return 0
	}

	breaths := len(counter.Peaks(Intervals(rr).Durations()))
	return FloatPrecise(float64(breaths)/seconds, 2)
}
