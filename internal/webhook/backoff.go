package webhook

import "time"

const (
	initialBackoff = 30 * time.Second
	maxBackoff     = 30 * time.Minute
)

// Backoff returns the delay before the next delivery attempt: 30s after the
// first failure, doubling each time, capped at 30 minutes.
func Backoff(attempts int) time.Duration {
	delay := initialBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
