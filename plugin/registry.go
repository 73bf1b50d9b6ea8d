package plugin

import "fmt"

// DefaultCounter is used when nothing else is configured
const DefaultCounter = "find_peaks"

// Counters is a global map of PeakCounter plugins.
var Counters = map[string]func() PeakCounter{
	"find_peaks": func() PeakCounter {
		return &LocalMaxima{}
	},
	"strict": func() PeakCounter {
		return &StrictMaxima{}
	},
}

// CounterLookup returns a fresh counter by name,
// the empty name selects DefaultCounter.
func CounterLookup(name string) (PeakCounter, error) {
	if name == "" {
		name = DefaultCounter
	}
	factory, ok := Counters[name]
	if !ok {
		return nil, fmt.Errorf("unknown peak counter: %s", name)
	}
	return factory(), nil
}
