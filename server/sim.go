package respira

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	Rt "github.com/maroda/respira/types"
)

// SimProvider generates an ECG-like signal (not clinical) at Rt.SampleRate.
// The heart rate is modulated by breathing, which is what the breath
// estimate looks for, and the baseline wanders with each breath.
// The output is deterministic: the same segment always gives the same samples.
type SimProvider struct {
	HeartRate  float64 // mean bpm
	BreathRate float64 // Hz
	Depth      float64 // fraction of HeartRate swung by each breath
	Noise      float64 // peak amplitude of deterministic noise, mV
}

// NewSimProvider with hr bpm, br Hz, sinus arrhythmia depth and noise
func NewSimProvider(hr, br, depth, noise float64) *SimProvider {
	return &SimProvider{HeartRate: hr, BreathRate: br, Depth: depth, Noise: noise}
}

// ParseSimProvider reads "sim:hr=72,br=0.25,depth=0.15,noise=0.01".
// Missing keys keep their defaults.
func ParseSimProvider(source string) (*SimProvider, error) {
	sp := NewSimProvider(72, 0.25, 0.15, 0)

	spec := strings.TrimPrefix(source, "sim:")
	if spec == "" {
		return sp, nil
	}

	for _, kv := range strings.Split(spec, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid simulator setting %q", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid simulator value %q: %w", kv, err)
		}
		switch strings.TrimSpace(parts[0]) {
		case "hr":
			sp.HeartRate = v
		case "br":
			sp.BreathRate = v
		case "depth":
			sp.Depth = v
		case "noise":
			sp.Noise = v
		default:
			return nil, fmt.Errorf("unknown simulator setting %q", parts[0])
		}
	}
	return sp, nil
}

// Samples runs the simulator from time zero so the cardiac phase
// of a segment does not depend on how it was requested
func (sp *SimProvider) Samples(record string, offset, seconds int) ([]float64, error) {
	if err := ValidateSegment(Rt.Segment{Record: record, Offset: offset, Seconds: seconds}); err != nil {
		return nil, err
	}

	start := offset * Rt.SampleRate
	end := (offset + seconds) * Rt.SampleRate
	out := make([]float64, 0, end-start)

	phase := 0.0
	for i := 0; i < end; i++ {
		t := float64(i) / Rt.SampleRate
		breath := math.Sin(2 * math.Pi * sp.BreathRate * t)

		hr := sp.HeartRate * (1 + sp.Depth*breath)
		phase += hr / 60 / Rt.SampleRate
		if phase >= 1 {
			phase -= 1
		}

		if i >= start {
			out = append(out, sp.sample(phase, t, breath))
		}
	}
	return out, nil
}

// sample is one point of the P-QRS-T cycle at cycle phase [0..1)
func (sp *SimProvider) sample(phase, t, breath float64) float64 {
	baseline := 0.05 * breath

	p := 0.08 * gauss(phase, 0.18, 0.03)
	q := -0.12 * gauss(phase, 0.30, 0.01)
	r := 1.00 * gauss(phase, 0.32, 0.015)
	s := -0.25 * gauss(phase, 0.35, 0.012)
	tw := 0.25 * gauss(phase, 0.60, 0.06)

	n := sp.Noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	return baseline + p + q + r + s + tw + n
}

func (sp *SimProvider) Type() string { return "sim" }

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }
