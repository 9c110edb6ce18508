package xlimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxKeys 进程内限流器默认最多跟踪的键数。
const DefaultMaxKeys = 10000

type localOptions struct {
	maxKeys int
	now     func() time.Time
}

// LocalOption 进程内限流器选项。
type LocalOption func(*localOptions)

// WithMaxKeys 设置最多跟踪的键数，超出时淘汰最久未访问的键。
func WithMaxKeys(n int) LocalOption {
	return func(o *localOptions) {
		if n > 0 {
			o.maxKeys = n
		}
	}
}

// WithClock 替换时间来源，测试使用。
func WithClock(now func() time.Time) LocalOption {
	return func(o *localOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Local 进程内令牌桶限流器。多实例部署时各实例独立计数。
type Local struct {
	rule    Rule
	now     func() time.Time
	mu      sync.Mutex
	buckets *lru.Cache[string, *tokenBucket]
}

// NewLocal 创建进程内限流器。
func NewLocal(rule Rule, opts ...LocalOption) (*Local, error) {
	rule, err := rule.normalize()
	if err != nil {
		return nil, err
	}
	o := &localOptions{maxKeys: DefaultMaxKeys, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	buckets, err := lru.New[string, *tokenBucket](o.maxKeys)
	if err != nil {
		return nil, err
	}
	return &Local{rule: rule, now: o.now, buckets: buckets}, nil
}

// Allow 实现 Limiter。
func (l *Local) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	b, ok := l.buckets.Get(key)
	if !ok {
		b = &tokenBucket{tokens: float64(l.rule.Burst), last: l.now()}
		l.buckets.Add(key, b)
	}
	l.mu.Unlock()

	allowed, remaining, retryAfter := b.take(l.rule, l.now())
	return Result{
		Allowed:    allowed,
		Limit:      l.rule.Burst,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}, nil
}

// Len 返回当前跟踪的键数。
func (l *Local) Len() int { return l.buckets.Len() }

type tokenBucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// take 按经过的时间补充令牌后取一个。
func (b *tokenBucket) take(rule Rule, now time.Time) (allowed bool, remaining int, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rate := float64(rule.Rate) / rule.Period.Seconds()
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = min(b.tokens+rate*elapsed.Seconds(), float64(rule.Burst))
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	deficit := 1 - b.tokens
	return false, 0, time.Duration(deficit / rate * float64(time.Second))
}
