package respira

import (
	"context"
	"log/slog"
	"sync"

	Rt "github.com/maroda/respira/types"
)

// Result pairs an analysis with its error, in request order
type Result struct {
	Analysis *Rt.Analysis
	Err      error
}

// AnalyzeAll runs the segments through one Respira on a fixed number of workers.
// Results line up with segs.
func AnalyzeAll(ctx context.Context, r Respira, segs []Rt.Segment, workers int) []Result {
	return runPool(ctx, len(segs), workers, func(ctx context.Context, i int) (*Rt.Analysis, error) {
		return r.Analyze(ctx, segs[i])
	})
}

// RunJobs is AnalyzeAll for configured jobs, each with its own Analyzer
func RunJobs(ctx context.Context, jobs []*Job, workers int) []Result {
	return runPool(ctx, len(jobs), workers, func(ctx context.Context, i int) (*Rt.Analysis, error) {
		return jobs[i].Analyzer.Analyze(ctx, jobs[i].Segment)
	})
}

// runPool calls fn for 0..n-1 on workers goroutines.
// Every call owns its own samples and scan state, so nothing is locked
// beyond the result slot it writes. Once ctx is done no new call starts,
// and the ones never started carry ctx.Err().
func runPool(ctx context.Context, n, workers int, fn func(context.Context, int) (*Rt.Analysis, error)) []Result {
	results := make([]Result, n)
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				a, err := fn(ctx, i)
				results[i] = Result{Analysis: a, Err: err}
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := 0; i < n; i++ {
		// checked first so a cancelled ctx never races a ready worker
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	for i := dispatched; i < n; i++ {
		results[i] = Result{Err: ctx.Err()}
	}

	if dispatched < n {
		slog.Warn("Analysis stopped early",
			slog.Int("done", dispatched),
			slog.Int("requested", n))
	}

	return results
}
