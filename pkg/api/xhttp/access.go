package xhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
)

// unmatchedRoute 未匹配路由时使用的操作名后缀
const unmatchedRoute = "unmatched"

// AccessLog 记录请求生命周期事件并为每个请求开启一个服务端观测跨度。
//
// 需要注册在 xctx.HTTPMiddleware 之后，以便事件带上请求字段；
// 作为 chi 中间件注册时，跨度名在路由匹配后改为 "METHOD /route/{pattern}"。
// logger 为 nil 时使用 xlog.Default()，observer 为 nil 时不产生观测数据。
func AccessLog(logger xlog.Logger, observer xmetrics.Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			xlog.RequestStarted(ctx, logger)

			ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
				Component: "http",
				Operation: r.Method,
				Kind:      xmetrics.KindServer,
				Attrs:     []xmetrics.Attr{xmetrics.String("http.method", r.Method)},
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				span.End(xmetrics.Result{
					Status:    xmetrics.HTTPStatus(status),
					Operation: r.Method + " " + routePattern(r),
					Attrs:     []xmetrics.Attr{xmetrics.Int("http.status_code", status)},
				})
				xlog.RequestFinished(ctx, logger, status, time.Since(start))
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}
