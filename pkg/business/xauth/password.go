package xauth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost 默认 bcrypt cost。
const DefaultCost = 10

// Passwords bcrypt 密码哈希。
type Passwords struct {
	cost int
}

// NewPasswords 创建哈希器；cost 为 0 时使用 DefaultCost。
func NewPasswords(cost int) (*Passwords, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}
	return &Passwords{cost: cost}, nil
}

// Hash 返回 password 的 bcrypt 哈希。
func (p *Passwords) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("xauth: hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare 判断 password 是否与哈希匹配。哈希格式错误视为不匹配。
func (p *Passwords) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
