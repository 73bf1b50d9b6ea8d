package respira

import (
	Rt "github.com/maroda/respira/types"
)

// Intervals is a local alias for helper methods
type Intervals []Rt.RRInterval

// RRIntervals turns beat times into the intervals between them.
// Durations are rounded to 4 places and each interval is stamped
// halfway through, using the rounded duration.
// Fewer than two beats give no intervals.
func RRIntervals(beats []float64) Intervals {
	if len(beats) < 2 {
		return Intervals{}
	}

	rr := make(Intervals, 0, len(beats)-1)
	for k := 1; k < len(beats); k++ {
		duration := FloatPrecise(beats[k]-beats[k-1], 4)
		rr = append(rr, Rt.RRInterval{
			Time:     beats[k-1] + 0.5*duration,
			Duration: duration,
		})
	}
	return rr
}

// Durations is the interval lengths as a signal in beat order
func (rr Intervals) Durations() []float64 {
	d := make([]float64, len(rr))
	for i, r := range rr {
		d[i] = r.Duration
	}
	return d
}

// HeartRate is the mean rate in beats per minute, 0 without intervals
func (rr Intervals) HeartRate() float64 {
	if len(rr) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rr {
		sum += r.Duration
	}
	return FloatPrecise(60/(sum/float64(len(rr))), 1)
}
