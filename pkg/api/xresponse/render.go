package xresponse

import (
	"context"
	"net/http"

	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/context/xctx"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

// 默认消息
const (
	DefaultSuccessMessage = "Success"
	contentTypeJSON       = "application/json; charset=utf-8"
)

// Option 配置 Renderer。
type Option func(*Renderer)

// WithDebug 开启后失败响应附带 errorStack。
func WithDebug(debug bool) Option {
	return func(r *Renderer) { r.debug = debug }
}

// WithLogger 设置编码失败时使用的 logger，nil 表示 xlog.Default()。
func WithLogger(l xlog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer 把结果写为 Envelope。状态码总是由调用方给出，不做推断。
//
// 构造后只读，可并发使用。
type Renderer struct {
	debug  bool
	logger xlog.Logger
}

// New 创建 Renderer。
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Debug 是否在失败响应中附带调用栈。
func (r *Renderer) Debug() bool { return r.debug }

// Success 写成功响应。status 为 0 时为 200，message 为空时为 "Success"。
func (r *Renderer) Success(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	if message == "" {
		message = DefaultSuccessMessage
	}
	r.write(ctx, w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error 写失败响应。context 绑定了请求时附带 requestId；debug 模式下附带 stack。
func (r *Renderer) Error(ctx context.Context, w http.ResponseWriter, status int, message, stack string) {
	r.write(ctx, w, errorStatus(status), r.failure(ctx, message, stack))
}

// ValidationError 写字段级校验失败响应，errs 为空时输出空数组。
func (r *Renderer) ValidationError(ctx context.Context, w http.ResponseWriter, status int, summary string, errs []xerr.ValidationError, stack string) {
	env := r.failure(ctx, summary, stack)
	env.Errors = errs
	if env.Errors == nil {
		env.Errors = []xerr.ValidationError{}
	}
	r.write(ctx, w, errorStatus(status), env)
}

func (r *Renderer) failure(ctx context.Context, message, stack string) Envelope {
	env := Envelope{Message: message, RequestID: xctx.RequestID(ctx)}
	if r.debug {
		env.ErrorStack = stack
	}
	return env
}

func errorStatus(status int) int {
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}

// write 先完整编码再写头；编码失败时改写为 500 未知错误。
func (r *Renderer) write(ctx context.Context, w http.ResponseWriter, status int, env Envelope) {
	body, err := env.MarshalJSON()
	if err != nil {
		r.log().Error(ctx, "encode response failed", xlog.Err(err), xlog.Component("xresponse"))
		status = http.StatusInternalServerError
		body, _ = Envelope{Message: xerr.MsgInternal, RequestID: xctx.RequestID(ctx)}.MarshalJSON()
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.log().Warn(ctx, "write response failed", xlog.Err(err), xlog.Component("xresponse"))
	}
}

func (r *Renderer) log() xlog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return xlog.Default()
}
