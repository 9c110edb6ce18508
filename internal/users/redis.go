package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xapikit/internal/storageopt"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
	"github.com/omeyang/xapikit/pkg/resilience/xbreaker"
)

const (
	redisComponent = "users.store"
	// DefaultRedisPrefix 默认 key 前缀。
	DefaultRedisPrefix = "xapi:"
)

// RedisOption 配置 RedisStore。
type RedisOption func(*RedisStore)

// WithPrefix 设置 key 前缀。
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithObserver 设置观测器，每个查询一个 client 跨度。
func WithObserver(o xmetrics.Observer) RedisOption {
	return func(s *RedisStore) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithQueryHook 设置查询钩子。
func WithQueryHook(h storageopt.QueryHook) RedisOption {
	return func(s *RedisStore) {
		s.hook = h
	}
}

// WithHealthTimeout 设置 Health 的超时。
func WithHealthTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.healthTimeout = d
	}
}

// WithBreaker 设置熔断器。Redis 连续失败时快速返回，不再等待超时。
func WithBreaker(b *xbreaker.Breaker) RedisOption {
	return func(s *RedisStore) {
		s.breaker = b
	}
}

// IsBreakerSuccess 熔断器的成功判定：未命中与邮箱冲突属于正常业务结果。
func IsBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, context.Canceled)
}

// RedisStore 基于 Redis 的用户存储。
//
// 数据布局：
//
//	{prefix}user:{id}      用户 JSON
//	{prefix}email:{email}  邮箱到 ID 的唯一索引
//	{prefix}users          有序集合，score 为创建时间（毫秒）
type RedisStore struct {
	client        redis.UniversalClient
	prefix        string
	observer      xmetrics.Observer
	hook          storageopt.QueryHook
	healthTimeout time.Duration
	breaker       *xbreaker.Breaker
}

// ErrNilRedisClient Redis 客户端为 nil。
var ErrNilRedisClient = errors.New("users: nil redis client")

// NewRedisStore 创建 RedisStore。
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}
	s := &RedisStore{
		client:        client,
		prefix:        DefaultRedisPrefix,
		observer:      xmetrics.NoopObserver{},
		healthTimeout: storageopt.DefaultHealthTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *RedisStore) userKey(id string) string     { return s.prefix + "user:" + id }
func (s *RedisStore) emailKey(email string) string { return s.prefix + "email:" + email }
func (s *RedisStore) indexKey() string             { return s.prefix + "users" }

// run 为一次查询开启观测跨度并报告查询钩子。
func (s *RedisStore) run(ctx context.Context, op string, params map[string]any, fn func(ctx context.Context) error) (err error) {
	ctx, span := xmetrics.Start(ctx, s.observer, xmetrics.SpanOptions{
		Component: redisComponent,
		Operation: op,
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("db.system", "redis")},
	})
	defer func() {
		// 未命中属于正常结果，不计为失败
		result := xmetrics.Result{Err: err}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailTaken) {
			result = xmetrics.Result{Status: xmetrics.StatusOK}
		}
		span.End(result)
	}()
	if s.breaker == nil {
		return storageopt.Measure(ctx, s.hook, op, params, fn)
	}
	return s.breaker.Do(ctx, func(ctx context.Context) error {
		return storageopt.Measure(ctx, s.hook, op, params, fn)
	})
}

// Create 实现 Store。邮箱索引用 SETNX 保证唯一。
func (s *RedisStore) Create(ctx context.Context, u *User) error {
	return s.run(ctx, "users.create", map[string]any{"id": u.ID, "email": u.Email}, func(ctx context.Context) error {
		data, err := json.Marshal(storedUser(*u))
		if err != nil {
			return fmt.Errorf("users: encode user: %w", err)
		}

		ok, err := s.client.SetNX(ctx, s.emailKey(u.Email), u.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("users: reserve email: %w", err)
		}
		if !ok {
			return ErrEmailTaken
		}

		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, s.userKey(u.ID), data, 0)
			p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(u.CreatedAt.UnixMilli()), Member: u.ID})
			return nil
		})
		if err != nil {
			// 释放已占用的邮箱，允许重试
			s.client.Del(context.WithoutCancel(ctx), s.emailKey(u.Email))
			return fmt.Errorf("users: save user: %w", err)
		}
		return nil
	})
}

// FindByID 实现 Store。
func (s *RedisStore) FindByID(ctx context.Context, id string) (*User, error) {
	var u *User
	err := s.run(ctx, "users.find_by_id", map[string]any{"id": id}, func(ctx context.Context) error {
		var err error
		u, err = s.get(ctx, id)
		return err
	})
	return u, err
}

// FindByEmail 实现 Store。
func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u *User
	err := s.run(ctx, "users.find_by_email", map[string]any{"email": email}, func(ctx context.Context) error {
		id, err := s.client.Get(ctx, s.emailKey(email)).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("users: lookup email: %w", err)
		}
		u, err = s.get(ctx, id)
		return err
	})
	return u, err
}

func (s *RedisStore) get(ctx context.Context, id string) (*User, error) {
	data, err := s.client.Get(ctx, s.userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: get user: %w", err)
	}
	return decodeUser(data)
}

// List 实现 Store。
func (s *RedisStore) List(ctx context.Context, offset, limit int) ([]User, error) {
	out := []User{}
	if offset < 0 || limit <= 0 {
		return out, nil
	}
	err := s.run(ctx, "users.list", map[string]any{"offset": offset, "limit": limit}, func(ctx context.Context) error {
		ids, err := s.client.ZRevRange(ctx, s.indexKey(), int64(offset), int64(offset)+int64(limit)-1).Result()
		if err != nil {
			return fmt.Errorf("users: list ids: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = s.userKey(id)
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return fmt.Errorf("users: load users: %w", err)
		}
		for _, v := range values {
			str, ok := v.(string)
			if !ok {
				// 索引与数据不一致时跳过
				continue
			}
			u, err := decodeUser([]byte(str))
			if err != nil {
				return err
			}
			out = append(out, *u)
		}
		return nil
	})
	return out, err
}

// Count 实现 Store。
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.run(ctx, "users.count", nil, func(ctx context.Context) error {
		var err error
		if n, err = s.client.ZCard(ctx, s.indexKey()).Result(); err != nil {
			return fmt.Errorf("users: count: %w", err)
		}
		return nil
	})
	return int(n), err
}

// Health 检查 Redis 连通性。
func (s *RedisStore) Health(ctx context.Context) error {
	return s.run(ctx, "health", nil, func(ctx context.Context) error {
		ctx, cancel := storageopt.HealthContext(ctx, s.healthTimeout)
		defer cancel()
		if err := s.client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("users: redis health: %w", err)
		}
		return nil
	})
}

// storedUser 持久化格式，包含密码哈希。
type storedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func decodeUser(data []byte) (*User, error) {
	var su storedUser
	if err := json.Unmarshal(data, &su); err != nil {
		return nil, fmt.Errorf("users: decode user: %w", err)
	}
	u := User(su)
	return &u, nil
}
