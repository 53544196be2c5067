package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// retry calls fn up to attempts times with a fixed delay between calls. It
// returns the last error, or the context error if ctx ends while waiting.
func retry(ctx context.Context, log *logrus.Entry, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": attempts,
		}).Warn("Database not ready, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
