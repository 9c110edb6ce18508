package users

import (
	"context"
	"sync"
)

// MemoryStore 进程内存储，用于开发与测试。并发安全。
type MemoryStore struct {
	mu      sync.RWMutex
	ordered []*User // 按创建顺序
	byID    map[string]*User
	byEmail map[string]*User
}

// NewMemoryStore 创建空的内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

// Create 实现 Store。
func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	c := *u
	s.ordered = append(s.ordered, &c)
	s.byID[c.ID] = &c
	s.byEmail[c.Email] = &c
	return nil
}

// FindByID 实现 Store。
func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// FindByEmail 实现 Store。
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// List 实现 Store。
func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.ordered)
	if offset < 0 || offset >= n || limit <= 0 {
		return []User{}, nil
	}
	out := make([]User, 0, min(limit, n-offset))
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.ordered[i])
	}
	return out, nil
}

// Count 实现 Store。
func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered), nil
}
