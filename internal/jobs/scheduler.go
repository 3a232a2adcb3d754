// Package jobs contains the periodic background work that keeps risk
// scores current and the insight table free of abandoned recommendations.
package jobs

import (
	"context"
	"sync"
	"time"

	"nuvolari/internal/logger"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs a set of jobs on their intervals until its context is
// cancelled. Each job runs once immediately at startup, then on every
// tick. A failing run is retried per the retry policy; exhausted retries
// are logged and the job waits for its next tick.
type Scheduler struct {
	jobs  []Job
	retry RetryConfig
}

// NewScheduler creates a scheduler with the default retry policy.
func NewScheduler(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, retry: DefaultRetryConfig()}
}

// Start blocks until ctx is cancelled, running every registered job.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runLoop(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	log := logger.Get()
	log.Infow("job scheduled", "job", job.Name, "interval", job.Interval)

	s.runOnce(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infow("job stopped", "job", job.Name)
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	log := logger.Get()
	start := time.Now()

	if err := WithRetry(ctx, s.retry, job.Name, job.Run); err != nil {
		log.Errorw("job failed after retries",
			"job", job.Name,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}

	log.Infow("job completed", "job", job.Name, "duration", time.Since(start))
}
