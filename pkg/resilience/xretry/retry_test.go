package xretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fast(opts ...Option) []Option {
	return append([]Option{WithDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}, opts...)
}

func TestDo(t *testing.T) {
	t.Run("SuccessFirstAttempt", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), func(context.Context) error {
			calls++
			return nil
		}, fast()...)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("SuccessAfterRetries", func(t *testing.T) {
		calls := 0
		var retried []uint
		err := Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		}, fast(WithOnRetry(func(n uint, err error) {
			retried = append(retried, n)
			assert.ErrorIs(t, err, errFlaky)
		}))...)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, retried, 2)
	})

	t.Run("Exhausted", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), func(context.Context) error {
			calls++
			return errFlaky
		}, fast(WithAttempts(3))...)
		require.Error(t, err)
		assert.ErrorIs(t, err, errFlaky)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, 3, calls)
	})

	t.Run("Permanent", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), func(context.Context) error {
			calls++
			return Permanent(errFlaky)
		}, fast(WithAttempts(5))...)
		require.Error(t, err)
		assert.ErrorIs(t, err, errFlaky)
		assert.True(t, IsPermanent(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Do(ctx, func(context.Context) error {
			calls++
			cancel()
			return errFlaky
		}, WithAttempts(5), WithDelay(time.Second))
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, errFlaky), err.Error())
		assert.NotContains(t, err.Error(), "after 5 attempts")
		assert.Equal(t, 1, calls)
	})

	t.Run("ZeroAttempts", func(t *testing.T) {
		err := Do(context.Background(), func(context.Context) error { return nil }, WithAttempts(0))
		assert.ErrorIs(t, err, ErrInvalidAttempts)
	})

	t.Run("PassesContext", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		err := Do(ctx, func(ctx context.Context) error {
			assert.Equal(t, "v", ctx.Value(key{}))
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestIsPermanent(t *testing.T) {
	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(errFlaky))
	assert.True(t, IsPermanent(Permanent(errFlaky)))
}
