package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"plmsync.GO/core/syncerr"
)

// Policy bounds retries of a single external call.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy is used when a client is built without one.
var DefaultPolicy = Policy{MaxAttempts: 3, InitialInterval: 500 * time.Millisecond, MaxInterval: 5 * time.Second}

// NoRetry runs the call exactly once.
var NoRetry = Policy{MaxAttempts: 1}

// Do runs op with exponential backoff. Only syncerr.ErrTransientIO is retried;
// any other error is returned as soon as it occurs.
func Do(ctx context.Context, p Policy, op func() error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.MaxAttempts-1)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, syncerr.ErrTransientIO) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}
