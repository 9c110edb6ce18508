package users

import (
	"strings"
	"time"
)

// User 用户记录。Password 为 bcrypt 哈希，不参与 JSON 序列化。
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials 注册与登录请求体。
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult 登录成功的响应数据。
type LoginResult struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// NormalizeEmail 去除首尾空白并转小写。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
