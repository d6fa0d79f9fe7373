package httpclient

import (
	"context"
	"time"

	"github.com/apex/log"

	apperrors "daing/internal/platform/errors"
)

// RetryPolicy bounds how often a transient failure is repeated. The delay is
// fixed between attempts.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// NoRetry is used for calls whose repetition could duplicate side effects.
func NoRetry() RetryPolicy {
	return RetryPolicy{Attempts: 1}
}

// SendWithRetry repeats Send while the failure is transient (no response was
// received). Any HTTP response, including an error status, ends the loop: the
// backend may already have acted on the request. It returns the number of
// attempts made alongside the last outcome.
func (c *Client) SendWithRetry(ctx context.Context, req Request, policy RetryPolicy) (Response, int, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var (
		resp Response
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err = c.Send(ctx, req)
		if err == nil || !apperrors.IsTransient(err) {
			return resp, attempt, err
		}
		if attempt == attempts {
			return resp, attempt, err
		}
		c.logger.WithFields(log.Fields{
			"op":           req.Op,
			"url":          req.URL,
			"attempt":      attempt,
			"max_attempts": attempts,
			"delay_ms":     policy.Delay.Milliseconds(),
		}).WithError(err).Warn("transient failure, retrying")
		if sleepErr := c.sleep(ctx, policy.Delay); sleepErr != nil {
			return resp, attempt, err
		}
	}
	return resp, attempts, err
}
