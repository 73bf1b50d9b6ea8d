package respira

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsInternal is the prometheus registry for respira itself
type StatsInternal struct {
	Registry     *prometheus.Registry
	Analyses     *prometheus.CounterVec
	Beats        prometheus.Counter
	AnalysisTime prometheus.Histogram
	BreathRate   *prometheus.GaugeVec
	HeartRate    *prometheus.GaugeVec
	WWW          *prometheus.CounterVec
}

// NewStatsInternal creates an isolated registry,
// each View gets its own so tests never collide on registration
func NewStatsInternal() *StatsInternal {
	reg := prometheus.NewRegistry()

	s := &StatsInternal{
		Registry: reg,
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "respira_analyses_total",
			Help: "Segment analyses by result",
		}, []string{"result"}),
		Beats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "respira_beats_total",
			Help: "Heartbeats detected across all analyses",
		}),
		AnalysisTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "respira_analysis_seconds",
			Help:    "Time to load and analyse one segment",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		BreathRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "respira_breath_frequency_hz",
			Help: "Latest breathing frequency estimate per record",
		}, []string{"record"}),
		HeartRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "respira_heart_rate_bpm",
			Help: "Latest mean heart rate per record",
		}, []string{"record"}),
		WWW: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "respira_http_requests_total",
			Help: "API requests by status code and method",
		}, []string{"code", "method"}),
	}

	reg.MustRegister(
		s.Analyses,
		s.Beats,
		s.AnalysisTime,
		s.BreathRate,
		s.HeartRate,
		s.WWW,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return s
}

// RecAnalysis records a successful analysis
func (s *StatsInternal) RecAnalysis(record string, beats int, breath, heart, seconds float64) {
	s.Analyses.WithLabelValues("ok").Inc()
	s.Beats.Add(float64(beats))
	s.AnalysisTime.Observe(seconds)
	s.BreathRate.WithLabelValues(record).Set(breath)
	s.HeartRate.WithLabelValues(record).Set(heart)
}

// RecAnalysisError records a failed analysis
func (s *StatsInternal) RecAnalysisError(seconds float64) {
	s.Analyses.WithLabelValues("error").Inc()
	s.AnalysisTime.Observe(seconds)
}

// RecWWW counts one API request
func (s *StatsInternal) RecWWW(code, method string) {
	s.WWW.WithLabelValues(code, method).Inc()
}

// Handler serves this registry only
func (s *StatsInternal) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}
