package xretry

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// 默认值
const (
	DefaultAttempts = 5
	DefaultDelay    = 200 * time.Millisecond
	DefaultMaxDelay = 5 * time.Second
)

// ErrInvalidAttempts 尝试次数为 0。
var ErrInvalidAttempts = errors.New("xretry: attempts must be positive")

type options struct {
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
	onRetry  func(attempt uint, err error)
}

// Option 重试选项。
type Option func(*options)

// WithAttempts 设置总尝试次数（含首次）。
func WithAttempts(n uint) Option {
	return func(o *options) { o.attempts = n }
}

// WithDelay 设置首次重试前的等待时间，之后按指数增长。
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithMaxDelay 设置单次等待上限。
func WithMaxDelay(d time.Duration) Option {
	return func(o *options) { o.maxDelay = d }
}

// WithOnRetry 每次失败且将要重试时调用，attempt 从 0 开始。
func WithOnRetry(fn func(attempt uint, err error)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Permanent 标记 err 不可重试。
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}

// IsPermanent 判断 err 是否被 Permanent 标记。
func IsPermanent(err error) bool {
	return err != nil && !retry.IsRecoverable(err)
}

// Do 执行 fn 直到成功、不可重试或次数耗尽，返回最后一次的错误。
func Do(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := &options{attempts: DefaultAttempts, delay: DefaultDelay, maxDelay: DefaultMaxDelay}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.attempts == 0 {
		return ErrInvalidAttempts
	}

	retryOpts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(o.attempts),
		retry.Delay(o.delay),
		retry.MaxDelay(o.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.WrapContextErrorWithLastError(true),
		retry.RetryIf(retry.IsRecoverable),
	}
	if o.onRetry != nil {
		retryOpts = append(retryOpts, retry.OnRetry(o.onRetry))
	}

	err := retry.New(retryOpts...).Do(func() error { return fn(ctx) })
	if err != nil && o.attempts > 1 && !IsPermanent(err) && ctx.Err() == nil {
		return fmt.Errorf("xretry: after %d attempts: %w", o.attempts, err)
	}
	return err
}
