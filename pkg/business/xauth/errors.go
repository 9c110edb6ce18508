package xauth

import "errors"

// =============================================================================
// 配置错误
// =============================================================================

var (
	// ErrEmptySecret 签名密钥为空。
	ErrEmptySecret = errors.New("xauth: empty signing secret")

	// ErrInvalidTTL Token 有效期非正。
	ErrInvalidTTL = errors.New("xauth: token ttl must be positive")

	// ErrInvalidExpiry 有效期字符串无法解析。
	ErrInvalidExpiry = errors.New("xauth: invalid expiry")

	// ErrInvalidCost bcrypt cost 超出 [bcrypt.MinCost, bcrypt.MaxCost]。
	ErrInvalidCost = errors.New("xauth: invalid bcrypt cost")

	ErrNilTokens = errors.New("xauth: nil token service")
)

// =============================================================================
// 认证错误
// =============================================================================

var (
	// ErrInvalidToken Token 签名、算法、过期时间或 claims 校验失败。
	ErrInvalidToken = errors.New("xauth: invalid token")

	// ErrPasswordTooLong 密码超过 bcrypt 的 72 字节上限。
	ErrPasswordTooLong = errors.New("xauth: password exceeds 72 bytes")
)
