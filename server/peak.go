package respira

// Peak scanner constants, in samples at 100 Hz
const (
	peakMisses   = 5 // samples not above the running max before the scan stops
	peakMaxWidth = 8 // half-maximum width must be below this (80ms)
)

// PeakOutcome tags the result of one scan
type PeakOutcome int

const (
	NotPeak PeakOutcome = iota // nothing usable, or the scan left the signal
	Peak                       // a narrow local maximum, i.e. a QRS complex
)

func (o PeakOutcome) String() string {
	if o == Peak {
		return "peak"
	}
	return "not a peak"
}

// PeakResult is a candidate peak and the verdict on it.
// Index, Height and Width are only meaningful once the scan found a maximum;
// Width is 0 when the width walk left the signal.
type PeakResult struct {
	Outcome PeakOutcome
	Index   int
	Height  float64
	Width   int
}

// IsPeak reports whether the candidate was accepted
func (r PeakResult) IsPeak() bool { return r.Outcome == Peak }

// FindPeak scans forward from i for a local maximum above floor
// and accepts it only when its half-maximum width is narrow.
//
// The miss tally counts every sample that did not beat the running maximum
// over the whole scan, not a run of consecutive ones.
func FindPeak(samples []float64, i int, floor float64) PeakResult {
	result := PeakResult{Outcome: NotPeak, Index: -1, Height: floor}
	if i < 0 {
		return result
	}

	misses := 0
	for misses < peakMisses {
		if i >= len(samples) {
			return result
		}
		if samples[i] > result.Height {
			result.Height = samples[i]
			result.Index = i
		} else {
			misses++
		}
		i++
	}

	// nothing ever rose above the floor
	if result.Index < 0 {
		return result
	}

	half := result.Height / 2

	left := result.Index - 1
	for {
		if left < 0 {
			return result
		}
		if samples[left] <= half {
			break
		}
		left--
	}

	right := result.Index + 1
	for {
		if right >= len(samples) {
			return result
		}
		if samples[right] <= half {
			break
		}
		right++
	}

	result.Width = right - left
	if result.Width < peakMaxWidth {
		result.Outcome = Peak
	}
	return result
}
