package jobs

import (
	"context"
	"time"

	"nuvolari/internal/logger"
)

// RetryConfig controls how a failed job run is retried.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the retry policy applied to scheduled jobs.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 60 * time.Second,
		BackoffFactor:  2.0,
	}
}

// WithRetry runs fn up to cfg.MaxAttempts times, sleeping with exponential
// backoff between attempts. It returns the last error if every attempt
// fails, and stops early when the context is cancelled.
func WithRetry(ctx context.Context, cfg RetryConfig, name string, fn func(ctx context.Context) error) error {
	backoff := cfg.InitialBackoff

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Get().Warnw("job attempt failed, retrying",
			"job", name,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
	}

	return err
}
