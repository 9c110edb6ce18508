package xauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 访问 Token 的 claims，id 为用户 ID。
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenOption 配置 Tokens。
type TokenOption func(*Tokens)

// WithClock 替换时间来源，测试使用。
func WithClock(now func() time.Time) TokenOption {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIssuer 设置 iss claim，Verify 时同时校验。
func WithIssuer(issuer string) TokenOption {
	return func(t *Tokens) {
		t.issuer = issuer
	}
}

// Tokens 签发与校验 HS256 访问 Token。并发安全。
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokens 创建 Token 服务。
func NewTokens(secret string, ttl time.Duration, opts ...TokenOption) (*Tokens, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	t := &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// TTL 返回签发 Token 的有效期。
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue 为 userID 签发访问 Token。
func (t *Tokens) Issue(userID string) (string, error) {
	if t == nil {
		return "", ErrNilTokens
	}
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("xauth: sign token: %w", err)
	}
	return signed, nil
}

// Verify 校验 Token 并返回 claims。
//
// 仅接受 HS256；exp 必须存在；id claim 不能为空。
// 所有失败都包装为 ErrInvalidToken，原因保留在错误链中。
func (t *Tokens) Verify(raw string) (*Claims, error) {
	if t == nil {
		return nil, ErrNilTokens
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return claims, nil
}
