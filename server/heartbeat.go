package respira

import (
	Rt "github.com/maroda/respira/types"
)

// Extractor skip policy, in samples
const (
	skipRejected    = 10  // 0.1s past a rejected candidate, e.g. a T-wave
	skipAccepted    = 20  // 0.2s past a beat so the same complex is not seen twice
	recalibrateFrom = 500 // after 5s of scan position every beat resets the threshold
	recalibrateGain = 0.65
)

// BeatScan is one pass of heartbeat extraction over a signal.
// It owns the running threshold and is never shared or reused.
type BeatScan struct {
	samples   []float64
	threshold float64
	pos       int
}

// NewBeatScan starts a scan with the threshold from FindThreshold
func NewBeatScan(samples []float64) *BeatScan {
	return &BeatScan{
		samples:   samples,
		threshold: FindThreshold(samples),
	}
}

// Threshold is the current detection threshold
func (b *BeatScan) Threshold() float64 { return b.threshold }

// Pos is the next sample the scan will look at
func (b *BeatScan) Pos() int { return b.pos }

// Next advances to the next accepted beat.
// It returns false once the signal is exhausted.
func (b *BeatScan) Next() (Rt.Beat, bool) {
	for b.pos < len(b.samples) {
		if b.samples[b.pos] <= b.threshold {
			b.pos++
			continue
		}

		found := FindPeak(b.samples, b.pos, b.threshold)
		if !found.IsPeak() {
			b.pos += skipRejected
			continue
		}

		p := found.Index
		beat := Rt.Beat{
			Index:     p,
			Time:      float64(p) / Rt.SampleRate,
			Amplitude: b.samples[p],
		}

		b.pos = p + skipAccepted
		if b.pos > recalibrateFrom {
			b.threshold = recalibrateGain * b.samples[p]
		}
		return beat, true
	}
	return Rt.Beat{}, false
}

// Beats is a local alias for helper methods
type Beats []Rt.Beat

// Times are the beat times in seconds
func (bs Beats) Times() []float64 {
	times := make([]float64, len(bs))
	for i, b := range bs {
		times[i] = b.Time
	}
	return times
}

// HeartbeatBeats runs a full scan and returns every accepted beat
func HeartbeatBeats(samples []float64) Beats {
	var beats Beats
	if len(samples) == 0 {
		return beats
	}

	scan := NewBeatScan(samples)
	for {
		beat, ok := scan.Next()
		if !ok {
			return beats
		}
		beats = append(beats, beat)
	}
}

// HeartbeatVector returns the R-peak times of a signal, in seconds.
// The result is strictly increasing and empty for an empty signal.
func HeartbeatVector(samples []float64) []float64 {
	return HeartbeatBeats(samples).Times()
}
