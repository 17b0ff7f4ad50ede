package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc 可以被重试的操作，返回 error 表示需要重试
type RetryableFunc func() error

// Config 重试配置
type Config struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// Option 重试配置的函数式选项
type Option func(*Config)

// WithMaxRetries 最大重试次数，默认 3 次；0 表示只执行一次
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay 第一次重试前的等待时间，默认 1 秒
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay 两次重试之间的最长等待，默认 30 秒
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithMultiplier 指数退避倍数，默认 2.0
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		maxRetries:   3,
		initialDelay: 1 * time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
	}
}

// permanentError 标记不值得重试的错误 (例如 GitHub 返回 404)
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent 包装一个错误，Do 遇到它会立即停止重试
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do 带指数退避地执行 fn
//
// - 第一次立即执行
// - 失败后按退避时间重试，最多 maxRetries 次
// - fn 返回 Permanent 包装的错误时不再重试
// - ctx 取消时返回包含 ctx.Err() 的错误
//
// 用法:
//
//	err := common.Do(ctx, func() error {
//	    return someAPICall()
//	}, common.WithMaxRetries(2), common.WithInitialDelay(time.Second))
func Do(ctx context.Context, fn RetryableFunc, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	lastErr := fn()
	if lastErr == nil {
		return nil
	}
	if isPermanent(lastErr) {
		return lastErr
	}

	for attempt := 1; attempt <= cfg.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		default:
		}

		delay := calculateDelay(attempt, cfg.initialDelay, cfg.maxDelay, cfg.multiplier)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
		case <-timer.C:
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if isPermanent(lastErr) {
			return lastErr
		}
	}

	if cfg.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, lastErr)
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// calculateDelay initialDelay * multiplier^(attempt-1)，上限 maxDelay
func calculateDelay(attempt int, initialDelay, maxDelay time.Duration, multiplier float64) time.Duration {
	delay := float64(initialDelay) * math.Pow(multiplier, float64(attempt-1))

	if time.Duration(delay) > maxDelay {
		return maxDelay
	}

	return time.Duration(delay)
}
