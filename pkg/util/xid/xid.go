package xid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/sonyflake/v2"
)

// =============================================================================
// 错误定义
// =============================================================================

var (
	// ErrInvalidID 字符串不是合法的正十进制 ID。
	ErrInvalidID = errors.New("xid: invalid id")

	// ErrClockBackwardTimeout 时钟回拨等待超时。
	ErrClockBackwardTimeout = errors.New("xid: clock backward wait timeout")

	// ErrOverTimeLimit 时间分量溢出，不可恢复。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	ErrInvalidConfig = errors.New("xid: invalid config")
	ErrNilGenerator  = errors.New("xid: nil generator (use NewGenerator to create)")
	ErrNilContext    = errors.New("xid: nil context")
)

const (
	// DefaultMaxWait 时钟回拨时的最长等待时间。
	DefaultMaxWait = 500 * time.Millisecond
	// DefaultRetryInterval 时钟回拨时的重试间隔。
	DefaultRetryInterval = 10 * time.Millisecond
)

// =============================================================================
// Generator
// =============================================================================

// Generator 基于 sonyflake 的 ID 生成器，ID 以十进制字符串对外暴露。
//
// 并发安全。
type Generator struct {
	next          func() (int64, error)
	maxWait       time.Duration
	retryInterval time.Duration
}

// Option 配置 Generator。
type Option func(*options)

type options struct {
	machineID     func() (uint16, error)
	maxWait       time.Duration
	retryInterval time.Duration
}

// WithMachineID 自定义机器 ID 来源，默认 DefaultMachineID。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(o *options) {
		o.machineID = fn
	}
}

// WithMaxWait 设置时钟回拨的最长等待时间，负值在 NewGenerator 时报错。
func WithMaxWait(d time.Duration) Option {
	return func(o *options) {
		o.maxWait = d
	}
}

// WithRetryInterval 设置时钟回拨的重试间隔，须为正值。
func WithRetryInterval(d time.Duration) Option {
	return func(o *options) {
		o.retryInterval = d
	}
}

// NewGenerator 创建生成器。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := &options{
		machineID:     DefaultMachineID,
		maxWait:       DefaultMaxWait,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.maxWait < 0 {
		return nil, fmt.Errorf("%w: max wait must be non-negative, got %s", ErrInvalidConfig, cfg.maxWait)
	}
	if cfg.retryInterval <= 0 {
		return nil, fmt.Errorf("%w: retry interval must be positive, got %s", ErrInvalidConfig, cfg.retryInterval)
	}
	if cfg.machineID == nil {
		cfg.machineID = DefaultMachineID
	}

	sf, err := sonyflake.New(sonyflake.Settings{
		MachineID: func() (int, error) {
			id, err := cfg.machineID()
			return int(id), err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Generator{next: sf.NextID, maxWait: cfg.maxWait, retryInterval: cfg.retryInterval}, nil
}

// Next 生成一个新的十进制 ID。
//
// 时钟回拨时在 maxWait 内按 retryInterval 重试；ctx 取消时提前返回。
func (g *Generator) Next(ctx context.Context) (string, error) {
	if g == nil || g.next == nil {
		return "", ErrNilGenerator
	}
	if ctx == nil {
		return "", ErrNilContext
	}
	id, err := g.nextWithRetry(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (g *Generator) nextWithRetry(ctx context.Context) (int64, error) {
	deadline := time.Now().Add(g.maxWait)
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for {
		id, err := g.next()
		switch {
		case err == nil:
			return id, nil
		case errors.Is(err, sonyflake.ErrOverTimeLimit):
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, fmt.Errorf("%w: %w", ErrClockBackwardTimeout, err)
		}
		timer.Reset(min(g.retryInterval, remaining))
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}
}

// Parse 校验十进制 ID 字符串并返回数值。
func Parse(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return id, nil
}
