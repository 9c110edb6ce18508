package xlimit

import (
	"net/http"

	"github.com/omeyang/xapikit/pkg/context/xctx"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

// KeyFunc 从请求中提取限流键。返回空串时不限流。
type KeyFunc func(r *http.Request) string

// ClientIP 以 xctx 解析出的客户端 IP 为键，未绑定请求时使用 RemoteAddr。
func ClientIP(r *http.Request) string {
	if rc := xctx.Current(r.Context()); rc != nil && rc.IP != "" {
		return rc.IP
	}
	return r.RemoteAddr
}

// LimitedFunc 请求被拒绝时写响应。
type LimitedFunc func(w http.ResponseWriter, r *http.Request, res Result)

type middlewareOptions struct {
	key    KeyFunc
	scope  string
	logger xlog.Logger
}

// MiddlewareOption HTTPMiddleware 选项。
type MiddlewareOption func(*middlewareOptions)

// WithKeyFunc 替换默认的 ClientIP。
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.key = fn
		}
	}
}

// WithScope 为键加上作用域前缀，多个中间件共用一个限流器时区分配额。
func WithScope(scope string) MiddlewareOption {
	return func(o *middlewareOptions) { o.scope = scope }
}

// WithLogger 设置限流器出错时使用的 logger，默认 xlog.Default()。
func WithLogger(l xlog.Logger) MiddlewareOption {
	return func(o *middlewareOptions) { o.logger = l }
}

// HTTPMiddleware 按键限流。limiter 出错时放行并记录 Warn 日志。
func HTTPMiddleware(limiter Limiter, onLimited LimitedFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := &middlewareOptions{key: ClientIP}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, _ *http.Request, _ Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := o.key(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if o.scope != "" {
				key = o.scope + ":" + key
			}

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log := o.logger
				if log == nil {
					log = xlog.Default()
				}
				log.Warn(r.Context(), "Rate limiter unavailable, allowing request",
					xlog.Err(err), xlog.Component("xlimit"))
				next.ServeHTTP(w, r)
				return
			}

			res.SetHeaders(w)
			if !res.Allowed {
				onLimited(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
