package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy returns a policy with negligible delays for tests.
func fastPolicy(attempts int) *Policy {
	return NewPolicy(
		WithMaxAttempts(attempts),
		WithBaseDelay(time.Microsecond),
		WithMaxDelay(10*time.Microsecond),
		WithCumulativeCap(time.Second),
	)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientFailure(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("permanent")
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestDo_CumulativeCapStopsEarly(t *testing.T) {
	p := NewPolicy(
		WithMaxAttempts(10),
		WithBaseDelay(50*time.Millisecond),
		WithMaxDelay(time.Second),
		WithCumulativeCap(time.Millisecond),
	)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("always")
	})

	assert.Error(t, err)
	// First backoff already exceeds the cap, so only one attempt runs.
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastPolicy(3).Do(ctx, func(context.Context) error {
		calls++
		return errors.New("never reached")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestJitter_WithinBounds(t *testing.T) {
	p := NewPolicy()
	for i := 0; i < 100; i++ {
		d := p.jitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.Less(t, d, 100*time.Millisecond)
	}
}
