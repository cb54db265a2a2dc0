package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// RetryConfig bounds the retries of transient upstream failures.
type RetryConfig struct {
	Attempts  int           // Total attempts, at least 1
	BaseDelay time.Duration // Delay before the second attempt, doubled each time
	MaxDelay  time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

func (r RetryConfig) delay(attempt int) time.Duration {
	d := r.BaseDelay << (attempt - 1)
	if d <= 0 || (r.MaxDelay > 0 && d > r.MaxDelay) {
		d = r.MaxDelay
	}
	return d
}

// transient reports failures worth another attempt: rate limiting, server
// errors and network timeouts.
func transient(err error) bool {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// do runs fn, retrying transient failures with exponential backoff. Every
// failure is returned as UpstreamUnavailable.
func (c *Client) do(ctx context.Context, what string, fn func() error) error {
	attempts := max(c.retry.Attempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			d := c.retry.delay(attempt - 1)
			c.log.Warnf("retrying %s in %s (attempt %d/%d): %v", what, d, attempt, attempts, lastErr)
			if err := c.sleep(ctx, d); err != nil {
				return models.NewPipelineError(models.KindUpstreamUnavailable, "", what, err)
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !transient(lastErr) || ctx.Err() != nil {
			break
		}
	}
	return models.NewPipelineError(models.KindUpstreamUnavailable, "", what,
		fmt.Errorf("giving up: %w", lastErr))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
