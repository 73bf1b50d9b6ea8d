package respira

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	Ro "github.com/maroda/respira/obvy"
	Rp "github.com/maroda/respira/plugin"
	Rs "github.com/maroda/respira/server"
	Rt "github.com/maroda/respira/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type View struct {
	MU         sync.RWMutex
	Jobs       []*Rs.Job         // configured segments
	Latest     []*Rt.Analysis    // latest analysis per job, nil until one succeeds
	Analyzer   Rs.Respira        // serves on-demand requests, may be nil
	Output     Rp.OutputAdapter  // where stored analyses are queried, may be nil
	Stats      *Ro.StatsInternal // Internal status for prometheus
	Supervisor *SweepSupervisor  // drives sweeping jobs
	Workers    int               // analyses run in parallel
	server     *http.Server
}

// measured times every analysis into the View's stats
type measured struct {
	next  Rs.Respira
	stats *Ro.StatsInternal
}

func (m measured) Analyze(ctx context.Context, seg Rt.Segment) (*Rt.Analysis, error) {
	start := time.Now()
	a, err := m.next.Analyze(ctx, seg)
	duration := time.Since(start).Seconds()

	if err != nil {
		m.stats.RecAnalysisError(duration)
		return nil, err
	}
	m.stats.RecAnalysis(seg.Record, len(a.Beats), a.BreathFrequency, a.HeartRate, duration)
	return a, nil
}

// NewView wraps every job's analyzer (and the on-demand analyzer) with stats
func NewView(jobs []*Rs.Job, an Rs.Respira, out Rp.OutputAdapter, workers int) *View {
	// create an attached prometheus registry
	stats := Ro.NewStatsInternal()

	for _, j := range jobs {
		j.Analyzer = measured{next: j.Analyzer, stats: stats}
	}
	if an != nil {
		an = measured{next: an, stats: stats}
	}

	return &View{
		Jobs:     jobs,
		Latest:   make([]*Rt.Analysis, len(jobs)),
		Analyzer: an,
		Output:   out,
		Stats:    stats,
		Workers:  workers,
	}
}

// AnalyzeJobs runs every configured job once and keeps the results.
// Misses are only logged so one bad record does not stop the rest;
// sweeping jobs move on to their next window afterwards.
func (v *View) AnalyzeJobs(ctx context.Context) []Rs.Result {
	v.MU.RLock()
	jobs := make([]*Rs.Job, len(v.Jobs))
	for i, j := range v.Jobs {
		cp := *j
		jobs[i] = &cp
	}
	v.MU.RUnlock()

	results := Rs.RunJobs(ctx, jobs, v.Workers)

	v.MU.Lock()
	defer v.MU.Unlock()
	for i, r := range results {
		if r.Err != nil {
			slog.Error("Failed to analyse job",
				slog.String("id", jobs[i].ID),
				slog.String("record", jobs[i].Segment.Record),
				slog.Int("offset", jobs[i].Segment.Offset),
				slog.Any("Error", r.Err))
		} else if i < len(v.Latest) {
			v.Latest[i] = r.Analysis
		}
		if i < len(v.Jobs) {
			v.Jobs[i].Advance(r.Err)
		}
	}

	return results
}

// AnalyzeOne serves a single on-demand segment
func (v *View) AnalyzeOne(ctx context.Context, seg Rt.Segment) (*Rt.Analysis, error) {
	if v.Analyzer == nil {
		return nil, errors.New("on-demand analysis is not configured")
	}
	return v.Analyzer.Analyze(ctx, seg)
}

// Snapshot is the latest analyses that exist, in job order
func (v *View) Snapshot() []*Rt.Analysis {
	v.MU.RLock()
	defer v.MU.RUnlock()

	out := make([]*Rt.Analysis, 0, len(v.Latest))
	for _, a := range v.Latest {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// RespWriter is a wrapper with StatsMiddleware, used for Prometheus
type RespWriter struct {
	http.ResponseWriter
	Status int
}

// WriteHeader is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// Write is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

// StatsMiddleware counts API requests and tags each with a request ID
func (v *View) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)

		wrapped := &RespWriter{
			ResponseWriter: w,
			Status:         200,
		}
		next.ServeHTTP(wrapped, r)

		v.Stats.RecWWW(strconv.Itoa(wrapped.Status), r.Method)
		slog.Debug("API request",
			slog.String("id", reqID),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.Status))
	})
}

// StartWeb analyses the configured jobs, then serves the API on addr
// with the sweep supervisor ticking every interval. It blocks until ctx is done.
func (v *View) StartWeb(ctx context.Context, addr string, interval time.Duration) error {
	v.AnalyzeJobs(ctx)

	v.server = &http.Server{
		Addr:    addr,
		Handler: otelhttp.NewHandler(v.SetupMux(), "respira"),
	}

	sup := v.NewSweepSupervisor(interval)
	sup.Start()
	defer sup.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting Respira web server...", slog.String("Port", addr))
		if err := v.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not start web server", slog.Any("Error", err))
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := v.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Web server shutdown failed", slog.Any("Error", err))
		return err
	}
	slog.Info("Web server stopped")
	return nil
}
