package xlimit

import (
	"context"
	"fmt"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix Redis 限流键默认前缀。
const DefaultKeyPrefix = "xlimit:"

// RedisOption Redis 限流器选项。
type RedisOption func(*Redis)

// WithKeyPrefix 设置 Redis 键前缀。
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// Redis 基于 redis_rate（GCRA）的分布式限流器，多实例共享配额。
type Redis struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
	prefix  string
}

// NewRedis 创建分布式限流器。
func NewRedis(client redis.UniversalClient, rule Rule, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	rule, err := rule.normalize()
	if err != nil {
		return nil, err
	}
	r := &Redis{
		limiter: redis_rate.NewLimiter(client),
		limit:   redis_rate.Limit{Rate: rule.Rate, Burst: rule.Burst, Period: rule.Period},
		prefix:  DefaultKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Allow 实现 Limiter。
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	res, err := r.limiter.Allow(ctx, r.prefix+key, r.limit)
	if err != nil {
		return Result{}, fmt.Errorf("xlimit: redis allow: %w", err)
	}
	return Result{
		Allowed:    res.Allowed > 0,
		Limit:      r.limit.Burst,
		Remaining:  res.Remaining,
		RetryAfter: max(res.RetryAfter, 0),
	}, nil
}

// Reset 清除 key 的计数。
func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.limiter.Reset(ctx, r.prefix+key)
}
