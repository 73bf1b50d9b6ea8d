package respira

import (
	"math"

	Rt "github.com/maroda/respira/types"
)

// ThresholdWindow is how much of the signal sets the first threshold
const ThresholdWindow = 10 * Rt.SampleRate

// FindThreshold decides the initial R-peak threshold:
// halfway between the mean and the maximum of the first ten seconds,
// or of everything when there is less.
// An empty signal has no threshold and returns 0.
func FindThreshold(samples []float64) float64 {
	window := samples
	if len(window) > ThresholdWindow {
		window = window[:ThresholdWindow]
	}
	if len(window) == 0 {
		return 0
	}

	upper := window[0]
	var sum float64
	for _, v := range window {
		sum += v
		if v > upper {
			upper = v
		}
	}
	mean := sum / float64(len(window))

	return mean + math.Abs(upper-mean)*0.5
}
