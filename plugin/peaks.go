package plugin

/*
	Local maxima

	Counts the oscillations in a signal, e.g. the RR-interval series.
	No width or prominence test is applied here.

	~~~ Plugin Reference Implementation ~~~
*/

// LocalMaxima finds every sample that is higher than both neighbours.
// A flat top counts once, at its middle (rounded down),
// as long as it rises into the plateau and falls out of it.
// The first and last samples are never maxima.
type LocalMaxima struct{}

func (p *LocalMaxima) Peaks(x []float64) []int {
	var peaks []int
	i := 1
	last := len(x) - 1

	for i < last {
		if x[i-1] < x[i] {
			ahead := i + 1

			// walk across a plateau
			for ahead < last && x[ahead] == x[i] {
				ahead++
			}

			if x[ahead] < x[i] {
				left := i
				right := ahead - 1
				peaks = append(peaks, (left+right)/2)
				i = ahead
			}
		}
		i++
	}

	return peaks
}

func (p *LocalMaxima) Type() string { return "find_peaks" }

// StrictMaxima only counts samples strictly above both neighbours,
// plateaus are ignored entirely.
type StrictMaxima struct{}

func (p *StrictMaxima) Peaks(x []float64) []int {
	var peaks []int
	for i := 1; i < len(x)-1; i++ {
		if x[i-1] < x[i] && x[i] > x[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

func (p *StrictMaxima) Type() string { return "strict" }
