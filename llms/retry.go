package llms

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 8 * time.Second
)

// RetryPolicy resends a failed provider request with exponential backoff.
// The zero value makes a single attempt.
type RetryPolicy struct {
	MaxRetries  int
	BaseBackoff time.Duration
	// Retryable reports whether err may clear up on another attempt. Nil
	// retries every error.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, fails with a non-retryable error, runs out
// of retries or ctx ends. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, fn func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || ctx.Err() != nil || (p.Retryable != nil && !p.Retryable(err)) {
			return err
		}

		wait := p.backoff(attempt + 1)
		logger.WarnContext(ctx, "retrying LLM request",
			"attempt", attempt+1, "max_retries", p.MaxRetries, "wait", wait, "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (retry canceled after %d attempts: %w)", err, attempt+1, ctx.Err())
		case <-timer.C:
		}
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseBackoff
	if base <= 0 {
		base = DefaultRetryBackoff
	}
	return min(base<<(attempt-1), maxRetryBackoff)
}

// RetryableStatus reports whether an HTTP status may succeed when resent.
func RetryableStatus(code int) bool {
	switch code {
	case 408, 409, 429:
		return true
	}
	return code >= 500
}
