package plugin

/*

	The Adapter sits aside /respira/
	Contains core interfaces for Plugin

*/

import (
	Rt "github.com/maroda/respira/types"
)

// PeakCounter finds the local maxima of an ordered signal.
// It is the only collaborator the breath estimate needs,
// so any counting rule can be swapped in here.
type PeakCounter interface {
	Peaks(x []float64) []int // Indices of the local maxima, ascending
	Type() string            // Unique ID for the counter
}

// OutputAdapter can be used to define a place for the analyses to go,
// one by one or in batches if supported by the output type.
type OutputAdapter interface {
	WriteAnalysis(a *Rt.Analysis) error                // Write singleton analysis
	WriteBatch(as []*Rt.Analysis) error                // Write batches of analyses
	QueryRecord(record string) ([]*Rt.Analysis, error) // All stored analyses of one record
	Flush() error                                      // Flush any buffered data
	Close() error                                      // Close the adapter and release resources
	Type() string                                      // ID for output
}
