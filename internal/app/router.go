package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/omeyang/xapikit/internal/users"
	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/api/xhttp"
	"github.com/omeyang/xapikit/pkg/api/xresponse"
	"github.com/omeyang/xapikit/pkg/business/xauth"
	"github.com/omeyang/xapikit/pkg/context/xctx"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
	"github.com/omeyang/xapikit/pkg/resilience/xlimit"
	"github.com/omeyang/xapikit/pkg/util/xnet"
)

// RouterDeps 路由依赖。
type RouterDeps struct {
	Config   Config
	Logger   xlog.Logger
	Observer xmetrics.Observer
	Users    *users.Service
	Tokens   *xauth.Tokens
	// Limiter 认证接口限流器，nil 时不限流。
	Limiter xlimit.Limiter
}

// NewRouter 组装中间件与路由。
//
// 中间件顺序：CORS → 请求上下文绑定 → 访问日志 → panic 恢复 → 路由。
func NewRouter(d RouterDeps) (http.Handler, error) {
	proxies, err := xnet.NewProxySet(d.Config.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	renderer := xresponse.New(xresponse.WithDebug(d.Config.Debug), xresponse.WithLogger(d.Logger))
	terminal := xhttp.NewTerminal(renderer, xhttp.WithLogger(d.Logger))
	guard := xauth.NewGuard(d.Tokens, terminal.Handle)
	h := &handlers{users: d.Users, renderer: renderer}

	r := chi.NewRouter()
	r.Use(
		cors.Handler(cors.Options{
			AllowedOrigins:   d.Config.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{xctx.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		xctx.HTTPMiddleware(
			xctx.WithMaxBodyBytes(d.Config.Server.MaxBodyBytes),
			xctx.WithTrustedProxies(proxies),
		),
		xhttp.AccessLog(d.Logger, d.Observer),
		terminal.Recover(),
	)
	r.NotFound(terminal.NotFound())
	r.MethodNotAllowed(terminal.MethodNotAllowed())

	r.Get("/", welcome)
	r.Route("/api", func(r chi.Router) {
		r.Get("/", apiRoot)
		r.Route("/auth", func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(xlimit.HTTPMiddleware(d.Limiter,
					func(w http.ResponseWriter, r *http.Request, _ xlimit.Result) {
						terminal.Handle(w, r, xerr.TooManyRequests())
					},
					xlimit.WithScope("auth"),
					xlimit.WithLogger(d.Logger),
				))
			}
			r.Post("/register", terminal.Wrap(h.register))
			r.Post("/login", terminal.Wrap(h.login))
		})
		r.Route("/user", func(r chi.Router) {
			r.Get("/", terminal.Wrap(h.listUsers))
			r.With(guard.Require).Get("/me", terminal.Wrap(h.me))
		})
	})
	return r, nil
}
