package xcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// =============================================================================
// 配置
// =============================================================================

// 默认配置
const (
	DefaultMaxEntries  = 10000
	DefaultTTL         = 5 * time.Minute
	DefaultLoadTimeout = 30 * time.Second

	// counterFactor ristretto 建议计数器数量为条目上限的 10 倍。
	counterFactor = 10
	bufferItems   = 64
)

type memoryOptions struct {
	maxEntries  int64
	ttl         time.Duration
	loadTimeout time.Duration
}

// MemoryOption 内存缓存选项。
type MemoryOption func(*memoryOptions)

// WithMaxEntries 设置条目上限。n <= 0 时忽略。
func WithMaxEntries(n int64) MemoryOption {
	return func(o *memoryOptions) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithTTL 设置条目存活时间，0 表示不过期。
func WithTTL(ttl time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.ttl = ttl }
}

// WithLoadTimeout 设置 Load 回源超时。d <= 0 时忽略。
func WithLoadTimeout(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		if d > 0 {
			o.loadTimeout = d
		}
	}
}

// =============================================================================
// Memory
// =============================================================================

// MemoryStats 缓存统计信息。
type MemoryStats struct {
	Hits        uint64
	Misses      uint64
	HitRatio    float64
	KeysAdded   uint64
	KeysEvicted uint64
}

// Memory 进程内泛型缓存，并发安全。
type Memory[V any] struct {
	cache       *ristretto.Cache[string, V]
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	closed      atomic.Bool
}

// NewMemory 创建内存缓存。使用完毕必须调用 Close 释放后台 goroutine。
func NewMemory[V any](opts ...MemoryOption) (*Memory[V], error) {
	o := &memoryOptions{
		maxEntries:  DefaultMaxEntries,
		ttl:         DefaultTTL,
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.ttl < 0 {
		return nil, fmt.Errorf("%w: negative ttl %s", ErrInvalidConfig, o.ttl)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: o.maxEntries * counterFactor,
		MaxCost:     o.maxEntries,
		BufferItems: bufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("xcache: create memory cache: %w", err)
	}
	return &Memory[V]{cache: cache, ttl: o.ttl, loadTimeout: o.loadTimeout}, nil
}

// Get 读取 key。
func (m *Memory[V]) Get(key string) (V, bool) {
	if m.closed.Load() {
		var zero V
		return zero, false
	}
	return m.cache.Get(key)
}

// Set 写入 key，返回是否被接纳。写入异步生效。
func (m *Memory[V]) Set(key string, value V) bool {
	if m.closed.Load() || key == "" {
		return false
	}
	return m.cache.SetWithTTL(key, value, 1, m.ttl)
}

// Delete 删除 key。
func (m *Memory[V]) Delete(key string) {
	if m.closed.Load() {
		return
	}
	m.cache.Del(key)
}

// Wait 等待缓冲中的写入全部生效。
func (m *Memory[V]) Wait() {
	if m.closed.Load() {
		return
	}
	m.cache.Wait()
}

// Stats 返回统计信息。
func (m *Memory[V]) Stats() MemoryStats {
	mt := m.cache.Metrics
	if mt == nil {
		return MemoryStats{}
	}
	return MemoryStats{
		Hits:        mt.Hits(),
		Misses:      mt.Misses(),
		HitRatio:    mt.Ratio(),
		KeysAdded:   mt.KeysAdded(),
		KeysEvicted: mt.KeysEvicted(),
	}
}

// Close 关闭缓存，重复调用安全。
func (m *Memory[V]) Close() {
	if m.closed.Swap(true) {
		return
	}
	m.cache.Close()
}

// =============================================================================
// Cache-Aside
// =============================================================================

// LoadFunc 回源函数。
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Load 读取 key，未命中时调用 fn 回源并写入缓存。
//
// 同一 key 的并发回源只执行一次。fn 返回错误时不写缓存，
// 成功时写入在 Load 返回前生效。
func (m *Memory[V]) Load(ctx context.Context, key string, fn LoadFunc[V]) (V, error) {
	var zero V
	if key == "" {
		return zero, ErrEmptyKey
	}
	if fn == nil {
		return zero, ErrNilLoader
	}
	if m.closed.Load() {
		return zero, ErrClosed
	}
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}

	ch := m.group.DoChan(key, func() (any, error) {
		return m.load(ctx, key, fn)
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(V)
		if !ok {
			return zero, fmt.Errorf("xcache: unexpected result type %T", res.Val)
		}
		return v, nil
	}
}

func (m *Memory[V]) load(ctx context.Context, key string, fn LoadFunc[V]) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoadPanic, r)
		}
	}()

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.loadTimeout)
	defer cancel()

	v, err = fn(loadCtx)
	if err != nil {
		return v, err
	}
	if !m.closed.Load() && m.cache.SetWithTTL(key, v, 1, m.ttl) {
		// 回源结果对后续读取立即可见
		m.cache.Wait()
	}
	return v, nil
}
