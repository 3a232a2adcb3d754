package jobs

import (
	"context"
	"time"

	"nuvolari/internal/logger"
	"nuvolari/internal/services"
)

// StaleSweeper retires pending insights that have outlived their useful
// window. Recommendations are computed against a portfolio snapshot, so
// old pending rows go stale rather than lingering forever.
type StaleSweeper struct {
	insights services.InsightServicer
	maxAge   time.Duration
}

// NewStaleSweeper creates a StaleSweeper that retires pending insights
// older than maxAge.
func NewStaleSweeper(insights services.InsightServicer, maxAge time.Duration) *StaleSweeper {
	return &StaleSweeper{insights: insights, maxAge: maxAge}
}

// Job wraps the sweeper as a schedulable job.
func (s *StaleSweeper) Job(interval time.Duration) Job {
	return Job{Name: "stale-sweep", Interval: interval, Run: s.Run}
}

// Run marks pending insights older than the cutoff as stale.
func (s *StaleSweeper) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	swept, err := s.insights.SweepStale(cutoff)
	if err != nil {
		return err
	}
	if swept > 0 {
		logger.Get().Infow("stale insights swept", "count", swept, "cutoff", cutoff)
	}
	return nil
}
