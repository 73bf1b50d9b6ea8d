package respira

import (
	"context"
	"sync"
	"time"
)

type SweepSupervisor struct {
	View     *View
	Interval time.Duration
	Ticker   *time.Ticker
	StopChan chan struct{}
	WG       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewSweepSupervisor is a wrapper around the View that re-runs the jobs
// on a ticker, which walks sweeping jobs through their records.
// They are strongly coupled, one knows about the other
func (v *View) NewSweepSupervisor(interval time.Duration) *SweepSupervisor {
	if interval <= 0 {
		interval = 1 * time.Second
	}
	ss := &SweepSupervisor{
		View:     v,
		Interval: interval,
	}
	v.Supervisor = ss
	return ss
}

// Start the SweepSupervisor
func (s *SweepSupervisor) Start() {
	s.StopChan = make(chan struct{})
	s.Ticker = time.NewTicker(s.Interval)

	// cancelled on Stop so a pass in flight does not start new segments
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		defer s.Ticker.Stop()

		for {
			select {
			case <-s.Ticker.C:
				s.View.AnalyzeJobs(ctx)
			case <-s.StopChan:
				return
			}
		}
	}()
}

// Stop the SweepSupervisor
func (s *SweepSupervisor) Stop() {
	if s.StopChan != nil {
		s.cancel()
		close(s.StopChan)
		s.WG.Wait()
		s.StopChan = nil
	}
}

// Restart the SweepSupervisor
func (s *SweepSupervisor) Restart() {
	s.Stop()
	s.Start()
}
