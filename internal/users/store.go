package users

import (
	"context"
	"errors"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

var (
	// ErrNotFound 用户不存在。
	ErrNotFound = errors.New("users: not found")

	// ErrEmailTaken 邮箱已被注册。
	ErrEmailTaken = errors.New("users: email already taken")
)

// Store 用户存储。
//
// 实现必须保证邮箱唯一：并发 Create 同一邮箱时只有一个成功，其余返回 ErrEmailTaken。
type Store interface {
	// Create 保存新用户。
	Create(ctx context.Context, u *User) error
	// FindByID 按 ID 查找，不存在时返回 ErrNotFound。
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail 按规范化后的邮箱查找，不存在时返回 ErrNotFound。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// List 按创建时间倒序返回 [offset, offset+limit) 区间的用户。
	List(ctx context.Context, offset, limit int) ([]User, error)
	// Count 返回用户总数。
	Count(ctx context.Context) (int, error)
}
