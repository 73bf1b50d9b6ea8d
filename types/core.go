package types

/*

	These are the "immutable" core types of Respira,
	provided for cross-package use (e.g. Plugins) and testing.

	There are no functions defined here.
	Struct constructors are housed in their own packages.
	Methods taking these types should create local aliases,
	for example: type Intervals []Rt.RRInterval

*/

// SampleRate is the fixed rate of every record, in Hz.
// Sample index i is at time i/SampleRate seconds.
const SampleRate = 100

// Segment identifies one analysis request.
// Offset and Seconds are whole seconds, as the records are addressed.
type Segment struct {
	Record  string `json:"record"`  // record name, e.g. "a01"
	Offset  int    `json:"offset"`  // seconds from the start of the record
	Seconds int    `json:"seconds"` // length of the segment
}

// Beat is an accepted R-peak
type Beat struct {
	Index     int     `json:"index"`     // sample index relative to segment start
	Time      float64 `json:"time"`      // Index / SampleRate
	Amplitude float64 `json:"amplitude"` // mV at Index
}

// RRInterval is the time between two adjacent beats,
// stamped at the middle of the interval.
type RRInterval struct {
	Time     float64 `json:"time"`     // midpoint, seconds from segment start
	Duration float64 `json:"duration"` // seconds, rounded to 4 places
}

// Analysis is everything derived from one Segment.
// It is only valid for that Segment and is never reused for another.
type Analysis struct {
	Segment         Segment      `json:"segment"`
	Threshold       float64      `json:"threshold"`       // initial detection threshold, mV
	Beats           []float64    `json:"beats"`           // beat times, seconds
	Intervals       []RRInterval `json:"intervals"`       // RR intervals
	BreathFrequency float64      `json:"breathFrequency"` // Hz, rounded to 2 places
	BreathsPerMin   float64      `json:"breathsPerMin"`   // BreathFrequency * 60
	HeartRate       float64      `json:"heartRate"`       // mean bpm from the intervals, 0 without any
	Counter         string       `json:"counter"`         // peak counter used for the breath estimate
}
