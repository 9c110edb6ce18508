package xauth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/context/xctx"
)

const bearerPrefix = "Bearer "

// Subject 通过认证的调用方。
type Subject struct {
	UserID    string
	ExpiresAt time.Time
}

type subjectKey struct{}

// WithSubject 返回携带 s 的 context。
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFromContext 返回已认证的调用方。
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	if ctx == nil {
		return Subject{}, false
	}
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}

// ErrorFunc 将认证失败写入响应，通常为 xhttp.Terminal.Handle。
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Guard Bearer Token 认证中间件。
type Guard struct {
	tokens  *Tokens
	onError ErrorFunc
}

// NewGuard 创建 Guard。
func NewGuard(tokens *Tokens, onError ErrorFunc) *Guard {
	return &Guard{tokens: tokens, onError: onError}
}

// Require 要求请求携带有效的 Bearer Token。
//
// Authorization 缺失或不以 "Bearer " 开头时返回 MissingAuthToken；
// 校验失败返回 InvalidToken。通过时将 Subject 写入 context，
// 并把用户 ID 记录到请求上下文。
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			g.fail(w, r, xerr.MissingAuthToken())
			return
		}

		claims, err := g.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			g.fail(w, r, xerr.InvalidToken().WithCause(err))
			return
		}

		ctx := r.Context()
		// 未绑定请求上下文时只写入 Subject
		_ = xctx.SetUserID(ctx, claims.UserID)
		subject := Subject{UserID: claims.UserID}
		if claims.ExpiresAt != nil {
			subject.ExpiresAt = claims.ExpiresAt.Time
		}
		next.ServeHTTP(w, r.WithContext(WithSubject(ctx, subject)))
	})
}

func (g *Guard) fail(w http.ResponseWriter, r *http.Request, err error) {
	if g.onError != nil {
		g.onError(w, r, err)
		return
	}
	info := xerr.From(err)
	http.Error(w, info.Message(), info.Status)
}
