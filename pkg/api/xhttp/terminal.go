package xhttp

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/api/xresponse"
	"github.com/omeyang/xapikit/pkg/context/xctx"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

// HandlerFunc 返回错误的 HTTP 处理函数。
//
// 处理函数只负责成功路径的响应；返回的错误由 [Terminal] 统一转换。
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// =============================================================================
// 终端错误处理器
// =============================================================================

// TerminalOption 配置 Terminal。
type TerminalOption func(*Terminal)

// WithLogger 设置内部诊断使用的 logger，nil 表示 xlog.Default()。
func WithLogger(l xlog.Logger) TerminalOption {
	return func(t *Terminal) { t.logger = l }
}

// Terminal 把任意错误转换为错误响应的唯一出口。
//
// 每个失败请求恰好经过一次 Handle：归一化为 *xerr.Info，
// 记录到请求上下文供失败事件使用，再按错误形态写出响应。
type Terminal struct {
	renderer *xresponse.Renderer
	logger   xlog.Logger
}

// NewTerminal 创建 Terminal。renderer 为 nil 时使用默认 Renderer。
func NewTerminal(renderer *xresponse.Renderer, opts ...TerminalOption) *Terminal {
	if renderer == nil {
		renderer = xresponse.New()
	}
	t := &Terminal{renderer: renderer}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Handle 处理错误。err 为 nil 时不做任何事。
//
// 错误上下文只记录首个错误；未绑定请求时跳过记录，响应照常写出。
func (t *Terminal) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	ctx := r.Context()
	info := xerr.From(err)

	if recErr := xctx.RecordError(ctx, info.Detail(), info.Stack()); recErr != nil &&
		!errors.Is(recErr, xctx.ErrAlreadyRecorded) && !errors.Is(recErr, xctx.ErrNotBound) {
		t.log().Warn(ctx, "record error failed", xlog.Err(recErr), xlog.Component("xhttp"))
	}

	if info.IsValidation() {
		t.renderer.ValidationError(ctx, w, info.Status, info.Message(), info.ValidationErrors, info.Stack())
		return
	}
	t.renderer.Error(ctx, w, info.Status, info.Message(), info.Stack())
}

// Wrap 将 HandlerFunc 适配为 http.HandlerFunc。
//
// 调用前把 chi 路由参数写入请求上下文，返回的错误交给 Handle。
func (t *Terminal) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordParams(r)
		if err := h(w, r); err != nil {
			t.Handle(w, r, err)
		}
	}
}

// NotFound 未匹配任何路由时的处理函数，404。
func (t *Terminal) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Handle(w, r, xerr.APIPathNotFound())
	}
}

// MethodNotAllowed 路径存在但方法不匹配时的处理函数，按未匹配处理，404。
func (t *Terminal) MethodNotAllowed() http.HandlerFunc {
	return t.NotFound()
}

// Recover 将下游 panic 转换为 500 未知错误并交给 Handle。
//
// http.ErrAbortHandler 继续向上抛出。响应头已写出时只记录错误，不再写响应。
func (t *Terminal) Recover() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				info := xerr.Internal(panicError(rec)).WithStack(string(debug.Stack()))
				if headerWritten(w) {
					_ = xctx.RecordError(r.Context(), info.Detail(), info.Stack())
					return
				}
				t.Handle(w, r, info)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func (t *Terminal) log() xlog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return xlog.Default()
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}

func headerWritten(w http.ResponseWriter) bool {
	ww, ok := w.(middleware.WrapResponseWriter)
	return ok && ww.Status() != 0
}

// recordParams 把 chi 路由参数写入请求上下文，通配符参数不记录。
func recordParams(r *http.Request) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return
	}
	rc := xctx.Current(r.Context())
	if rc == nil {
		return
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	rc.SetParams(params)
}

// Param 返回 chi 路由参数。
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
