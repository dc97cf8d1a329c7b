// Package retry provides a bounded retry policy for embedding-provider
// calls: exponential backoff with jitter and a capped cumulative
// backoff, instead of ad hoc retry loops at call sites.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Default policy values, conservative for local inference servers.
const (
	DefaultMaxAttempts   = 3
	DefaultBaseDelay     = 200 * time.Millisecond
	DefaultMaxDelay      = 2 * time.Second
	DefaultCumulativeCap = 5 * time.Second
)

// Policy is a bounded retry policy. The zero value retries nothing;
// construct with NewPolicy for sane defaults.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt; each further
	// attempt doubles it.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration

	// CumulativeCap bounds the total time spent sleeping across all
	// attempts. Once exceeded, no further attempts are made.
	CumulativeCap time.Duration

	// rand is the jitter source; overridable for deterministic tests.
	rand func() float64
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxAttempts sets the total attempt count.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxAttempts = n
		}
	}
}

// WithBaseDelay sets the initial backoff interval.
func WithBaseDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.BaseDelay = d
		}
	}
}

// WithMaxDelay caps a single backoff interval.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.MaxDelay = d
		}
	}
}

// WithCumulativeCap bounds total backoff across all attempts.
func WithCumulativeCap(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.CumulativeCap = d
		}
	}
}

// NewPolicy creates a retry policy with the given options.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		MaxAttempts:   DefaultMaxAttempts,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		CumulativeCap: DefaultCumulativeCap,
		rand:          rand.Float64,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do runs fn until it succeeds, attempts are exhausted, the cumulative
// backoff cap is reached, or ctx is cancelled. The last error is
// returned on failure.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	var slept time.Duration
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		wait := p.jitter(delay)
		if slept+wait > p.CumulativeCap {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		slept += wait
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return lastErr
}

// jitter applies full jitter in [d/2, d).
func (p *Policy) jitter(d time.Duration) time.Duration {
	if p.rand == nil {
		return d
	}
	half := float64(d) / 2
	return time.Duration(half + p.rand()*half)
}
