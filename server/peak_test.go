package respira_test

import (
	"testing"

	Rs "github.com/maroda/respira/server"
)

func TestFindPeak(t *testing.T) {
	t.Run("Accepts a narrow spike", func(t *testing.T) {
		samples := make([]float64, 50)
		samples[19], samples[20], samples[21] = 0.4, 1.0, 0.4

		got := Rs.FindPeak(samples, 20, 0.5)
		if !got.IsPeak() {
			t.Fatalf("expected a peak, got %v", got.Outcome)
		}
		assertInt(t, got.Index, 20)
		assertFloat(t, got.Height, 1.0)
		assertInt(t, got.Width, 2)
	})

	tests := []struct {
		name      string
		shape     map[int]float64
		start     int
		wantPeak  bool
		wantWidth int
	}{
		{
			name:      "Accepts a width of 7 samples",
			shape:     map[int]float64{17: 0.3, 18: 0.7, 19: 0.8, 20: 1.0, 21: 0.8, 22: 0.7, 23: 0.6, 24: 0.3},
			start:     18,
			wantPeak:  true,
			wantWidth: 7,
		},
		{
			name:      "Rejects a width of 8 samples",
			shape:     map[int]float64{16: 0.3, 17: 0.6, 18: 0.7, 19: 0.8, 20: 1.0, 21: 0.8, 22: 0.7, 23: 0.6, 24: 0.3},
			start:     17,
			wantPeak:  false,
			wantWidth: 8,
		},
		{
			name: "Rejects a wide T-wave",
			shape: map[int]float64{
				15: 0.6, 16: 0.68, 17: 0.76, 18: 0.84, 19: 0.92, 20: 1.0,
				21: 0.92, 22: 0.84, 23: 0.76, 24: 0.68, 25: 0.6,
			},
			start:     15,
			wantPeak:  false,
			wantWidth: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]float64, 50)
			for i, v := range tt.shape {
				samples[i] = v
			}

			got := Rs.FindPeak(samples, tt.start, 0.5)
			if got.IsPeak() != tt.wantPeak {
				t.Errorf("IsPeak() = %v, want %v", got.IsPeak(), tt.wantPeak)
			}
			assertInt(t, got.Index, 20)
			assertInt(t, got.Width, tt.wantWidth)
		})
	}

	t.Run("Counts misses over the whole scan, not consecutively", func(t *testing.T) {
		samples := make([]float64, 20)
		samples[2] = 0.6
		samples[3], samples[4] = 0.3, 0.3
		samples[5] = 0.7
		samples[6], samples[7] = 0.3, 0.3
		samples[8] = 0.9
		samples[9] = 0.3
		// a run-of-five rule would reach this higher sample
		samples[10] = 1.0

		got := Rs.FindPeak(samples, 2, 0.5)
		if !got.IsPeak() {
			t.Fatalf("expected a peak, got %v", got.Outcome)
		}
		assertInt(t, got.Index, 8)
		assertFloat(t, got.Height, 0.9)
	})

	t.Run("Not a peak when the scan runs off the end", func(t *testing.T) {
		samples := []float64{0, 0, 0, 1.0, 0}
		got := Rs.FindPeak(samples, 3, 0.5)
		if got.IsPeak() {
			t.Errorf("expected not a peak, got %+v", got)
		}
	})

	t.Run("Not a peak when the width walk runs off the start", func(t *testing.T) {
		samples := []float64{0.9, 1.0, 0, 0, 0, 0, 0, 0, 0}
		got := Rs.FindPeak(samples, 0, 0.5)
		if got.IsPeak() {
			t.Errorf("expected not a peak, got %+v", got)
		}
		assertInt(t, got.Index, 1)
	})

	t.Run("Not a peak when the width walk runs off the end", func(t *testing.T) {
		samples := []float64{0, 0, 1.0, 0.9, 0.8, 0.7, 0.6, 0.6}
		got := Rs.FindPeak(samples, 2, 0.5)
		if got.IsPeak() {
			t.Errorf("expected not a peak, got %+v", got)
		}
	})

	t.Run("Not a peak when nothing rises above the floor", func(t *testing.T) {
		samples := make([]float64, 20)
		got := Rs.FindPeak(samples, 0, 0.5)
		if got.IsPeak() {
			t.Errorf("expected not a peak, got %+v", got)
		}
		assertInt(t, got.Index, -1)
	})

	t.Run("Not a peak for a negative start", func(t *testing.T) {
		samples := makeSpikes(1, 1.0, 10)
		got := Rs.FindPeak(samples, -1, 0.5)
		if got.IsPeak() {
			t.Errorf("expected not a peak, got %+v", got)
		}
	})

	t.Run("Does not modify the samples", func(t *testing.T) {
		samples := makeSpikes(1, 1.0, 10)
		before := append([]float64(nil), samples...)
		Rs.FindPeak(samples, 10, 0.5)
		for i := range samples {
			if samples[i] != before[i] {
				t.Fatalf("sample %d changed from %v to %v", i, before[i], samples[i])
			}
		}
	})
}

func TestPeakOutcome_String(t *testing.T) {
	assertString(t, Rs.Peak.String(), "peak")
	assertString(t, Rs.NotPeak.String(), "not a peak")
}
