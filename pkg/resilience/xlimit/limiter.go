package xlimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrInvalidRule 规则参数非法。
	ErrInvalidRule = errors.New("xlimit: invalid rule")

	// ErrNilClient Redis 客户端为 nil。
	ErrNilClient = errors.New("xlimit: nil redis client")
)

// Rule 限流规则：每 Period 补充 Rate 个令牌，桶容量为 Burst。
type Rule struct {
	Rate   int
	Period time.Duration
	// Burst 为 0 时等于 Rate。
	Burst int
}

// PerMinute 每分钟 n 次。
func PerMinute(n int) Rule { return Rule{Rate: n, Period: time.Minute} }

// PerSecond 每秒 n 次。
func PerSecond(n int) Rule { return Rule{Rate: n, Period: time.Second} }

func (r Rule) normalize() (Rule, error) {
	if r.Burst == 0 {
		r.Burst = r.Rate
	}
	if r.Rate <= 0 || r.Period <= 0 || r.Burst < 0 {
		return Rule{}, fmt.Errorf("%w: rate=%d period=%s burst=%d", ErrInvalidRule, r.Rate, r.Period, r.Burst)
	}
	return r, nil
}

// Result 单次检查的结果。
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter 被拒绝时距下一个可用令牌的时间。
	RetryAfter time.Duration
}

// 限流响应头
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderRetryAfter = "Retry-After"
)

// SetHeaders 写入限流响应头。Limit <= 0 时不写。
func (r Result) SetHeaders(w http.ResponseWriter) {
	if r.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(r.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(max(r.Remaining, 0)))
	if !r.Allowed && r.RetryAfter > 0 {
		// 向上取整到秒
		secs := int((r.RetryAfter + time.Second - 1) / time.Second)
		h.Set(HeaderRetryAfter, strconv.Itoa(secs))
	}
}

// Limiter 限流器，实现必须并发安全。
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
