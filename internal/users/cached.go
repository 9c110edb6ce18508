package users

import (
	"context"
	"time"

	"github.com/omeyang/xapikit/pkg/storage/xcache"
)

// CachedStore 为 FindByID 加一层进程内缓存，其余操作直接委托。
//
// 用户记录创建后不再修改，缓存只需按 TTL 过期。
type CachedStore struct {
	Store
	cache *xcache.Memory[*User]
}

// NewCachedStore 包装 next。size 为条目上限，ttl 为 0 时不过期。
func NewCachedStore(next Store, size int64, ttl time.Duration) (*CachedStore, error) {
	cache, err := xcache.NewMemory[*User](xcache.WithMaxEntries(size), xcache.WithTTL(ttl))
	if err != nil {
		return nil, err
	}
	return &CachedStore{Store: next, cache: cache}, nil
}

// FindByID 实现 Store。返回副本，调用方修改不影响缓存。
func (s *CachedStore) FindByID(ctx context.Context, id string) (*User, error) {
	u, err := s.cache.Load(ctx, id, func(ctx context.Context) (*User, error) {
		return s.Store.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	c := *u
	return &c, nil
}

// Health 委托给被包装的存储，不支持健康检查时返回 nil。
func (s *CachedStore) Health(ctx context.Context) error {
	if h, ok := s.Store.(interface{ Health(context.Context) error }); ok {
		return h.Health(ctx)
	}
	return nil
}

// Stats 返回缓存统计。
func (s *CachedStore) Stats() xcache.MemoryStats { return s.cache.Stats() }

// Close 释放缓存。
func (s *CachedStore) Close() { s.cache.Close() }
