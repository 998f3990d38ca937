// Package retry provides a bounded exponential backoff policy shared by
// the network fetch engine and the authentication flow.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded retry schedule: MaxRetries retries after the
// initial attempt, with delays starting at BaseDelay, doubling each
// attempt and capped at MaxDelay.
type Policy struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int
}

// DefaultPolicy matches the daemon client's reference behavior.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay:  1000 * time.Millisecond,
		MaxDelay:   10000 * time.Millisecond,
		MaxRetries: 8,
	}
}

// WithRetries returns a copy of the policy with a different retry budget.
func (p Policy) WithRetries(n int) Policy {
	p.MaxRetries = n
	return p
}

// Attempts returns the total number of attempts the policy allows
// (the initial attempt plus the retries).
func (p Policy) Attempts() int { return p.MaxRetries + 1 }

// Do runs op until it succeeds, returns a permanent error, the budget is
// exhausted, or the context is canceled. Wrap terminal errors with
// backoff.Permanent to stop early; any other error is retried.
func (p Policy) Do(ctx context.Context, op func() error) error {
	return backoff.Retry(op, p.backOff(ctx))
}

func (p Policy) backOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.MaxInterval = p.MaxDelay
	// The budget is attempt-count based, not wall-clock based, and the
	// schedule must be deterministic.
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Permanent marks err as terminal so Do stops retrying and returns it.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
