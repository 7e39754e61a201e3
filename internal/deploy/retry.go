package deploy

import (
	"log/slog"
	"time"

	"github.com/cooklabs/cookdrive/internal/drivesdk"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// RetryPolicy wraps a single remote call with bounded retry and exponential
// backoff. Every remote mutation (mkdir, upload, delete, marker write) goes
// through the same policy so call sites carry no backoff logic of their own.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	sleep func(time.Duration)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		sleep:       time.Sleep,
	}
}

// Do invokes fn, retrying transient failures with delays of BaseDelay,
// 2*BaseDelay, 4*BaseDelay, ... up to MaxAttempts total attempts.
// Non-transient failures propagate immediately; after the attempt budget is
// spent, the last failure propagates.
func (p RetryPolicy) Do(op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !drivesdk.IsTransient(err) || attempt >= attempts {
			return err
		}

		delay := p.BaseDelay << (attempt - 1)
		slog.Warn("transient drive error", "op", op, "attempt", attempt, "maxAttempts", attempts, "retryIn", delay, "error", err)
		sleep(delay)
	}
}
