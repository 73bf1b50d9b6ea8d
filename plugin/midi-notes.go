package plugin

import (
	"math"

	Rt "github.com/maroda/respira/types"
)

// MIDI note mapping is kept out of the build-tagged output
// so it is available (and testable) in every build.

const (
	semitoneSeconds = 0.01 // 10ms of RR deviation moves one semitone
	maxSemitones    = 24   // two octaves either way
)

// IntervalNote places an RR interval relative to root:
// longer than the mean goes up, shorter goes down.
// Breathing then shows up as a rising and falling melody.
func IntervalNote(root uint8, duration, mean float64) uint8 {
	steps := math.Round((duration - mean) / semitoneSeconds)
	steps = math.Max(math.Min(steps, maxSemitones), -maxSemitones)

	note := float64(root) + steps
	return uint8(math.Max(math.Min(note, 127), 0))
}

// IntervalNotes maps a whole analysis, one note per interval
func IntervalNotes(root uint8, a *Rt.Analysis) []uint8 {
	if a == nil || len(a.Intervals) == 0 {
		return nil
	}

	var sum float64
	for _, rr := range a.Intervals {
		sum += rr.Duration
	}
	mean := sum / float64(len(a.Intervals))

	notes := make([]uint8, len(a.Intervals))
	for i, rr := range a.Intervals {
		notes[i] = IntervalNote(root, rr.Duration, mean)
	}
	return notes
}
