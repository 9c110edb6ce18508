package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xapikit/internal/storageopt"
	"github.com/omeyang/xapikit/internal/users"
	"github.com/omeyang/xapikit/pkg/business/xauth"
	"github.com/omeyang/xapikit/pkg/config/xconf"
	"github.com/omeyang/xapikit/pkg/lifecycle/xrun"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
	"github.com/omeyang/xapikit/pkg/resilience/xbreaker"
	"github.com/omeyang/xapikit/pkg/resilience/xlimit"
	"github.com/omeyang/xapikit/pkg/resilience/xretry"
	"github.com/omeyang/xapikit/pkg/util/xid"
)

// ServiceName 日志与指标中使用的服务名。
const ServiceName = "xapid"

const (
	readHeaderTimeout        = 10 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
)

// =============================================================================
// 选项
// =============================================================================

type serverOptions struct {
	store     users.Store
	observer  xmetrics.Observer
	telemetry *xmetrics.Providers
	version   string
	runOpts   []xrun.Option
}

// Option 服务组装选项。
type Option func(*serverOptions)

// WithStore 使用给定的存储，忽略 store.driver。
func WithStore(s users.Store) Option {
	return func(o *serverOptions) { o.store = s }
}

// WithObserver 替换默认的 OpenTelemetry 观察者。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *serverOptions) { o.observer = obs }
}

// WithTelemetry 使用给定的 provider 构建观察者，忽略 otel.endpoint。
// provider 由 Server.Close 关闭。
func WithTelemetry(p *xmetrics.Providers) Option {
	return func(o *serverOptions) { o.telemetry = p }
}

// WithVersion 设置导出资源中的 service.version。
func WithVersion(version string) Option {
	return func(o *serverOptions) { o.version = version }
}

// WithRunOptions 透传给 xrun.RunWithOptions 的选项。
func WithRunOptions(opts ...xrun.Option) Option {
	return func(o *serverOptions) { o.runOpts = append(o.runOpts, opts...) }
}

// =============================================================================
// Server
// =============================================================================

// Server 组装完成的服务。
type Server struct {
	cfg      Config
	src      xconf.Config
	logger   xlog.LoggerWithLevel
	closeLog func() error
	redis    *redis.Client
	cache    *users.CachedStore
	otel     *xmetrics.Providers
	store    users.Store
	users    *users.Service
	handler  http.Handler
	runOpts  []xrun.Option
}

type healthChecker interface {
	Health(ctx context.Context) error
}

// New 按配置组装服务。src 可为 nil，此时不监视配置文件。
//
// New 会将构建出的 logger 设为 xlog 默认 logger。
func New(cfg Config, src xconf.Config, console io.Writer, opts ...Option) (srv *Server, err error) {
	o := &serverOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	logger, closeLog, err := NewLogger(cfg.Log, console)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, src: src, logger: logger, closeLog: closeLog, otel: o.telemetry, runOpts: o.runOpts}
	defer func() {
		if err != nil {
			err = errors.Join(err, s.Close())
		}
	}()
	observer := o.observer
	if observer == nil {
		if observer, err = s.buildObserver(o); err != nil {
			return nil, err
		}
	}

	if s.store, err = s.buildStore(o.store, observer); err != nil {
		return nil, err
	}

	expires, err := xauth.ParseExpiry(cfg.Auth.AccessTokenExpires)
	if err != nil {
		return nil, err
	}
	tokens, err := xauth.NewTokens(cfg.Auth.AccessTokenSecret, expires)
	if err != nil {
		return nil, err
	}
	passwords, err := xauth.NewPasswords(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	ids, err := xid.NewGenerator()
	if err != nil {
		return nil, err
	}
	s.users = users.NewService(s.store, ids, passwords, tokens)

	limiter, err := s.buildLimiter()
	if err != nil {
		return nil, err
	}
	s.handler, err = NewRouter(RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Observer: observer,
		Users:    s.users,
		Tokens:   tokens,
		Limiter:  limiter,
	})
	if err != nil {
		return nil, err
	}
	xlog.SetDefault(logger)
	return s, nil
}

func (s *Server) buildStore(injected users.Store, observer xmetrics.Observer) (users.Store, error) {
	if injected != nil {
		return injected, nil
	}
	if s.cfg.Store.Driver != DriverRedis {
		return users.NewMemoryStore(), nil
	}

	rc := s.cfg.Store.Redis
	s.redis = redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	ropts := []users.RedisOption{
		users.WithPrefix(rc.Prefix),
		users.WithObserver(observer),
		users.WithQueryHook(storageopt.QueryLogger(s.logger, s.cfg.Store.SlowQuery)),
	}
	if bc := s.cfg.Store.Breaker; bc.Failures > 0 {
		ropts = append(ropts, users.WithBreaker(xbreaker.New("users.redis",
			xbreaker.WithFailureThreshold(bc.Failures),
			xbreaker.WithOpenTimeout(bc.OpenTimeout),
			xbreaker.WithSuccessFunc(users.IsBreakerSuccess),
			xbreaker.WithLogger(s.logger),
		)))
	}
	store, err := users.NewRedisStore(s.redis, ropts...)
	if err != nil {
		return nil, err
	}

	cc := s.cfg.Store.Cache
	if cc.Size <= 0 {
		return store, nil
	}
	if s.cache, err = users.NewCachedStore(store, cc.Size, cc.TTL); err != nil {
		return nil, err
	}
	return s.cache, nil
}

// buildObserver 构建 OpenTelemetry 观察者。
// 配置了 otel.endpoint 时经 OTLP 导出，否则使用 otel 全局 provider。
func (s *Server) buildObserver(o *serverOptions) (xmetrics.Observer, error) {
	if s.otel == nil && s.cfg.OTel.Enabled() {
		p, err := xmetrics.NewOTLPProviders(context.Background(), s.cfg.OTel.Export(o.version))
		if err != nil {
			return nil, err
		}
		s.otel = p
		s.logger.Info(context.Background(), "Telemetry export enabled",
			slog.String("endpoint", s.cfg.OTel.Endpoint),
			slog.Float64("sample_ratio", s.cfg.OTel.SampleRatio),
		)
	}
	opts := append([]xmetrics.Option{xmetrics.WithInstrumentationName(ServiceName)}, s.otel.Options()...)
	return xmetrics.NewOTelObserver(opts...)
}

// buildLimiter Redis 驱动下多实例共享配额，否则按进程计数。
func (s *Server) buildLimiter() (xlimit.Limiter, error) {
	rl := s.cfg.RateLimit
	if !rl.Enabled {
		return nil, nil
	}
	if s.redis != nil {
		return xlimit.NewRedis(s.redis, rl.Rule(),
			xlimit.WithKeyPrefix(s.cfg.Store.Redis.Prefix+"ratelimit:"))
	}
	return xlimit.NewLocal(rl.Rule())
}

// Handler 返回完整的 HTTP 处理链。
func (s *Server) Handler() http.Handler { return s.handler }

// Users 返回用户服务。
func (s *Server) Users() *users.Service { return s.users }

// Logger 返回服务 logger。
func (s *Server) Logger() xlog.LoggerWithLevel { return s.logger }

// CheckStore 检查存储是否可用。不支持健康检查的存储总是返回 nil。
func (s *Server) CheckStore(ctx context.Context) error {
	if hc, ok := s.store.(healthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// WaitForStore 按 store.connect_attempts 重试 CheckStore，间隔指数增长。
// 成功后记录尝试次数与总耗时。
func (s *Server) WaitForStore(ctx context.Context) error {
	start := time.Now()
	var attempts int64
	check := func(ctx context.Context) error {
		attempts++
		return s.CheckStore(ctx)
	}
	err := xretry.Do(ctx, check,
		xretry.WithAttempts(max(s.cfg.Store.ConnectAttempts, 1)),
		xretry.WithOnRetry(func(attempt uint, err error) {
			s.logger.Warn(ctx, "Store not ready, retrying",
				slog.Uint64("attempt", uint64(attempt)),
				xlog.Err(err),
			)
		}),
	)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Store ready",
		xlog.Component("store"),
		xlog.Count(attempts),
		xlog.Duration(time.Since(start)),
	)
	return nil
}

// Run 监听 server.addr 直到 ctx 结束或收到退出信号。
// 配置来自文件时同时监视该文件，log.level 的变化即时生效。
func (s *Server) Run(ctx context.Context) error {
	if err := s.WaitForStore(ctx); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	services := []func(ctx context.Context) error{
		xrun.HTTPServer(httpServer, s.cfg.Server.ShutdownTimeout),
	}

	if s.src != nil {
		w, err := xconf.Watch(s.src, s.onConfigChange)
		switch {
		case err == nil:
			services = append(services, w.Run)
		case errors.Is(err, xconf.ErrNotWatchable):
		default:
			return err
		}
	}

	s.logger.Info(ctx, "Server listening",
		slog.String("addr", s.cfg.Server.Addr),
		slog.String("store", s.storeName()),
	)
	opts := append([]xrun.Option{xrun.WithLogger(s.logger), xrun.WithName(ServiceName)}, s.runOpts...)
	err := xrun.RunWithOptions(ctx, opts, services...)
	if errors.Is(err, xrun.ErrSignal) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) storeName() string {
	if s.redis != nil {
		return DriverRedis
	}
	return DriverMemory
}

// onConfigChange 配置文件变化时只应用 log.level，其余配置需要重启生效。
func (s *Server) onConfigChange(src xconf.Config, err error) {
	ctx := context.Background()
	if err != nil {
		s.logger.Warn(ctx, "Config reload failed", xlog.Err(err))
		return
	}
	cfg, err := decodeConfig(src)
	if err != nil {
		s.logger.Warn(ctx, "Config reload rejected", xlog.Err(err))
		return
	}
	old := s.logger.GetLevel()
	changed, err := applyLogLevel(s.logger, cfg.Log.Level)
	if err != nil {
		s.logger.Warn(ctx, "Config reload rejected", xlog.Err(err))
		return
	}
	if changed {
		s.logger.Info(ctx, "Log level changed",
			slog.String("from", old.String()),
			slog.String("to", s.logger.GetLevel().String()),
		)
	}
}

// Close 释放缓存、Redis 连接与日志文件，可重复调用。
func (s *Server) Close() error {
	var errs []error
	if s.cache != nil {
		s.cache.Close()
		s.cache = nil
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
		s.redis = nil
	}
	if s.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		errs = append(errs, s.otel.Shutdown(ctx))
		cancel()
		s.otel = nil
	}
	if s.closeLog != nil {
		errs = append(errs, s.closeLog())
		s.closeLog = nil
	}
	return errors.Join(errs...)
}
