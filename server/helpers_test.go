package respira_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	Rt "github.com/maroda/respira/types"
)

/// Helpers

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertGotError(t testing.TB, got error) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected an error but got %q", got)
	}
}

func assertInt(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertFloat(t testing.TB, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("did not get correct value, got %v, want %v", got, want)
	}
}

func assertFloatNear(t testing.TB, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("got %v, want %v (+/- %v)", got, want, tol)
	}
}

func assertString(t testing.TB, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func assertStringContains(t testing.TB, full, want string) {
	t.Helper()
	if !strings.Contains(full, want) {
		t.Errorf("Did not find %q, expected string contains %q", want, full)
	}
}

func assertIncreasing(t testing.TB, xs []float64) {
	t.Helper()
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			t.Fatalf("not strictly increasing at %d: %v then %v", i, xs[i-1], xs[i])
		}
	}
}

// makeSpikes is a baseline of zeros, seconds long,
// with one sample of amp at each index in at
func makeSpikes(seconds int, amp float64, at ...int) []float64 {
	samples := make([]float64, seconds*Rt.SampleRate)
	for _, i := range at {
		samples[i] = amp
	}
	return samples
}

// makeBeatTrain is makeSpikes with one spike every second,
// one sample after each whole second
func makeBeatTrain(seconds int) []float64 {
	var at []int
	for k := 0; k < seconds; k++ {
		at = append(at, k*Rt.SampleRate+1)
	}
	return makeSpikes(seconds, 1.0, at...)
}
