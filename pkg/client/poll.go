package client

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrSessionCancelled is returned when the polled session was cancelled
// before it became ready.
var ErrSessionCancelled = errors.New("session cancelled")

// ErrPollExhausted is returned when MaxAttempts status checks passed
// without the session becoming ready.
var ErrPollExhausted = errors.New("session not ready after max attempts")

// PollOptions bounds the wait. Zero values pick the defaults: the 3-second
// interval the web client used, 100 attempts (five minutes), and doubling
// backoff on transient errors up to 30 seconds.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
	MaxErrWait  time.Duration
}

func (o *PollOptions) withDefaults() PollOptions {
	out := PollOptions{Interval: 3 * time.Second, MaxAttempts: 100, MaxErrWait: 30 * time.Second}
	if o == nil {
		return out
	}
	if o.Interval > 0 {
		out.Interval = o.Interval
	}
	if o.MaxAttempts > 0 {
		out.MaxAttempts = o.MaxAttempts
	}
	if o.MaxErrWait > 0 {
		out.MaxErrWait = o.MaxErrWait
	}
	return out
}

// WaitUntilReady polls the session status until the session is ready, the
// attempt limit runs out, or ctx ends. Transient failures (5xx, network)
// back off and keep polling; 401 and 404 abort immediately since retrying
// cannot fix them.
func (c *Client) WaitUntilReady(ctx context.Context, sessionID string, opts *PollOptions) (*SessionStatus, error) {
	o := opts.withDefaults()

	errStreak := 0
	for attempt := 0; attempt < o.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := o.Interval
			if errStreak > 0 {
				wait = backoffWait(o.Interval, errStreak, o.MaxErrWait)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		st, err := c.GetSession(ctx, sessionID)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 404) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errStreak++
			continue
		}
		errStreak = 0

		if st.Status == "cancelled" {
			return st, ErrSessionCancelled
		}
		if st.Ready {
			return st, nil
		}
	}
	return nil, ErrPollExhausted
}

// backoffWait doubles the base interval per consecutive error with a little
// jitter so a fleet of stuck clients does not poll in lockstep.
func backoffWait(base time.Duration, errStreak int, max time.Duration) time.Duration {
	wait := base
	for i := 1; i < errStreak; i++ {
		wait *= 2
		if wait >= max {
			wait = max
			break
		}
	}
	jitter := time.Duration(rand.Int63n(int64(wait)/4 + 1))
	if wait+jitter > max {
		return max
	}
	return wait + jitter
}
