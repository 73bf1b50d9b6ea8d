package respira

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	Rp "github.com/maroda/respira/plugin"
	Rt "github.com/maroda/respira/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/maroda/respira/server")

// Respira is everything that can turn a segment request into an analysis
type Respira interface {
	Analyze(ctx context.Context, seg Rt.Segment) (*Rt.Analysis, error)
}

// Analyzer connects the pipeline to where samples come from
// and, optionally, to where analyses go
type Analyzer struct {
	Provider SampleProvider
	Counter  Rp.PeakCounter
	Output   Rp.OutputAdapter // nil for no output
}

// NewAnalyzer uses the named peak counter, "" for the default
func NewAnalyzer(p SampleProvider, counter string) (*Analyzer, error) {
	if p == nil {
		return nil, errors.New("no sample provider")
	}
	c, err := Rp.CounterLookup(counter)
	if err != nil {
		slog.Error("Could not find peak counter", slog.String("counter", counter), slog.Any("Error", err))
		return nil, err
	}
	return &Analyzer{
		Provider: p,
		Counter:  c,
	}, nil
}

// AnalyzeSamples runs the whole pipeline over one in-memory signal:
// threshold, beats, RR intervals, breath frequency.
// It is a pure function of its arguments.
func AnalyzeSamples(samples []float64, seconds float64, counter Rp.PeakCounter) *Rt.Analysis {
	beats := HeartbeatVector(samples)
	rr := RRIntervals(beats)
	freq := BreathFrequency(rr, seconds, counter)

	a := &Rt.Analysis{
		Threshold:       FindThreshold(samples),
		Beats:           beats,
		Intervals:       rr,
		BreathFrequency: freq,
		BreathsPerMin:   FloatPrecise(freq*60, 1),
		HeartRate:       rr.HeartRate(),
	}
	if counter != nil {
		a.Counter = counter.Type()
	}
	return a
}

// Analyze loads one segment and runs the pipeline over it.
// Only an invalid request or a provider failure is an error;
// a quiet segment is a valid analysis with no beats.
func (an *Analyzer) Analyze(ctx context.Context, seg Rt.Segment) (*Rt.Analysis, error) {
	_, span := tracer.Start(ctx, "Analyze")
	defer span.End()

	span.SetAttributes(
		attribute.String("segment.record", seg.Record),
		attribute.Int("segment.offset", seg.Offset),
		attribute.Int("segment.seconds", seg.Seconds),
	)

	if err := ValidateSegment(seg); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	samples, err := an.Provider.Samples(seg.Record, seg.Offset, seg.Seconds)
	if err != nil {
		slog.Error("Could not load segment",
			slog.String("record", seg.Record),
			slog.Int("offset", seg.Offset),
			slog.Int("seconds", seg.Seconds),
			slog.Any("Error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("loading %s at %ds: %w", seg.Record, seg.Offset, err)
	}

	a := AnalyzeSamples(samples, float64(seg.Seconds), an.Counter)
	a.Segment = seg

	span.SetAttributes(
		attribute.Int("analysis.beats", len(a.Beats)),
		attribute.Float64("analysis.breath_frequency", a.BreathFrequency),
	)

	slog.Debug("Segment analysed",
		slog.String("record", seg.Record),
		slog.Int("offset", seg.Offset),
		slog.Int("beats", len(a.Beats)),
		slog.Float64("breathFrequency", a.BreathFrequency))

	if an.Output != nil {
		if err := an.Output.WriteAnalysis(a); err != nil {
			// the analysis itself is fine, only the write failed
			slog.Error("Could not write analysis",
				slog.String("output", an.Output.Type()),
				slog.Any("Error", err))
		}
	}

	return a, nil
}
