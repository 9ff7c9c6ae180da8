package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Pinger is satisfied by every client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitFor pings p until it answers, giving up after maxRetries additional
// attempts. Each ping is bounded by pingTimeout.
func WaitFor(ctx context.Context, p Pinger, maxRetries int, initialInterval, pingTimeout time.Duration) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval
	policy.MaxElapsedTime = 0

	op := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Ping(pingCtx)
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx))
}
