package xbreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

// 默认值
const (
	DefaultFailureThreshold = 5
	DefaultOpenTimeout      = 30 * time.Second
	DefaultHalfOpenRequests = 1
)

// ErrOpen 熔断器处于打开状态，或半开状态下试探请求已满。
var ErrOpen = errors.New("xbreaker: circuit open")

// 状态名，与 gobreaker.State.String 一致。
const (
	StateClosed   = "closed"
	StateHalfOpen = "half-open"
	StateOpen     = "open"
)

type options struct {
	failureThreshold uint32
	openTimeout      time.Duration
	halfOpenRequests uint32
	isSuccessful     func(error) bool
	logger           xlog.Logger
}

// Option 熔断器选项。
type Option func(*options)

// WithFailureThreshold 连续失败多少次后熔断。
func WithFailureThreshold(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.failureThreshold = n
		}
	}
}

// WithOpenTimeout 熔断持续时间，之后进入半开状态。
func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.openTimeout = d
		}
	}
}

// WithHalfOpenRequests 半开状态下放行的试探请求数。
func WithHalfOpenRequests(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.halfOpenRequests = n
		}
	}
}

// WithSuccessFunc 判断错误是否计为成功，默认 nil 与 context.Canceled 计为成功。
func WithSuccessFunc(fn func(error) bool) Option {
	return func(o *options) { o.isSuccessful = fn }
}

// WithLogger 状态变化时记录 Warn 日志。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func defaultSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Breaker 熔断器，并发安全。
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// New 创建熔断器。
func New(name string, opts ...Option) *Breaker {
	o := &options{
		failureThreshold: DefaultFailureThreshold,
		openTimeout:      DefaultOpenTimeout,
		halfOpenRequests: DefaultHalfOpenRequests,
		isSuccessful:     defaultSuccess,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.isSuccessful == nil {
		o.isSuccessful = defaultSuccess
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: o.halfOpenRequests,
		Timeout:     o.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.failureThreshold
		},
		IsSuccessful: o.isSuccessful,
	}
	if o.logger != nil {
		logger := o.logger
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "Circuit breaker state changed",
				xlog.Component("xbreaker"),
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}
	}
	return &Breaker{name: name, cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

// Name 返回熔断器名称。
func (b *Breaker) Name() string { return b.name }

// State 返回当前状态名。
func (b *Breaker) State() string { return b.cb.State().String() }

// Do 在熔断器保护下执行 fn。熔断时不调用 fn，返回包装 ErrOpen 的错误。
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", ErrOpen, b.name, err)
	}
	return err
}
