package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	tests := []struct {
		name             string
		failUntilN       int
		maxRetries       int
		expectedAttempts int
		shouldSucceed    bool
	}{
		{name: "第二次成功", failUntilN: 2, maxRetries: 3, expectedAttempts: 2, shouldSucceed: true},
		{name: "最后一次重试成功", failUntilN: 4, maxRetries: 3, expectedAttempts: 4, shouldSucceed: true},
		{name: "全部失败", failUntilN: 10, maxRetries: 3, expectedAttempts: 4, shouldSucceed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0

			err := Do(context.Background(), func() error {
				attempts++
				if attempts < tt.failUntilN {
					return errors.New("temporary failure")
				}
				return nil
			}, WithMaxRetries(tt.maxRetries), WithInitialDelay(time.Millisecond))

			if tt.shouldSucceed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
			assert.Equal(t, tt.expectedAttempts, attempts)
		})
	}
}

func TestDo_ZeroRetriesReturnsOriginalError(t *testing.T) {
	original := errors.New("upstream down")
	attempts := 0

	err := Do(context.Background(), func() error {
		attempts++
		return original
	}, WithMaxRetries(0))

	assert.Equal(t, 1, attempts)
	assert.Same(t, original, err)
}

func TestDo_PermanentStopsRetrying(t *testing.T) {
	cause := errors.New("404 not found")
	attempts := 0

	err := Do(context.Background(), func() error {
		attempts++
		return Permanent(cause)
	}, WithMaxRetries(5), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, cause)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errors.New("always fails")
	}, WithInitialDelay(100*time.Millisecond), WithMaxRetries(5))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, "retry: function cannot be nil", err.Error())
}

func TestDo_ErrorWrapping(t *testing.T) {
	originalErr := errors.New("original error")

	err := Do(context.Background(), func() error {
		return originalErr
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, originalErr)
	assert.Contains(t, err.Error(), "retry failed after 3 attempts")
}

func TestDo_InvalidOptions(t *testing.T) {
	// 非法参数会被忽略，使用默认值
	err := Do(context.Background(), func() error {
		return nil
	},
		WithMaxRetries(-1),
		WithInitialDelay(-1),
		WithMaxDelay(-1),
		WithMultiplier(-1),
	)

	assert.NoError(t, err)
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name         string
		attempt      int
		initialDelay time.Duration
		maxDelay     time.Duration
		multiplier   float64
		expected     time.Duration
	}{
		{name: "第一次重试", attempt: 1, initialDelay: 100 * time.Millisecond, maxDelay: time.Second, multiplier: 2.0, expected: 100 * time.Millisecond},
		{name: "第三次重试", attempt: 3, initialDelay: 100 * time.Millisecond, maxDelay: time.Second, multiplier: 2.0, expected: 400 * time.Millisecond},
		{name: "达到上限", attempt: 5, initialDelay: 100 * time.Millisecond, maxDelay: 500 * time.Millisecond, multiplier: 2.0, expected: 500 * time.Millisecond},
		{name: "倍数 1.5", attempt: 2, initialDelay: 100 * time.Millisecond, maxDelay: time.Second, multiplier: 1.5, expected: 150 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calculateDelay(tt.attempt, tt.initialDelay, tt.maxDelay, tt.multiplier))
		})
	}
}

func BenchmarkDo_Success(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		_ = Do(ctx, func() error {
			return nil
		})
	}
}
