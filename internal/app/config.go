package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/omeyang/xapikit/pkg/business/xauth"
	"github.com/omeyang/xapikit/pkg/config/xconf"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
	"github.com/omeyang/xapikit/pkg/resilience/xlimit"
	"github.com/omeyang/xapikit/pkg/security/xredact"
)

// EnvPrefix 覆盖配置的环境变量前缀，双下划线表示层级。
const EnvPrefix = "XAPI_"

// 存储驱动。
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

var (
	// ErrMissingSecret 未配置 auth.access_token_secret。
	ErrMissingSecret = errors.New("app: auth.access_token_secret is required")

	ErrUnknownDriver    = errors.New("app: unknown store driver")
	ErrUnknownLogFormat = errors.New("app: unknown log format")
	ErrInvalidRateLimit = errors.New("app: invalid rate_limit")
)

// Config 服务配置。
type Config struct {
	Server ServerConfig `koanf:"server" json:"server"`
	Auth   AuthConfig   `koanf:"auth" json:"auth"`
	CORS   CORSConfig   `koanf:"cors" json:"cors"`
	Log    LogConfig    `koanf:"log" json:"log"`
	Store  StoreConfig  `koanf:"store" json:"store"`
	// RateLimit 认证接口按客户端 IP 限流。
	RateLimit RateLimitConfig `koanf:"rate_limit" json:"rate_limit"`
	OTel      OTelConfig      `koanf:"otel" json:"otel"`
	// Debug 错误响应中附带 errorStack。
	Debug bool `koanf:"debug" json:"debug"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" json:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" json:"max_body_bytes"`
	TrustedProxies  []string      `koanf:"trusted_proxies" json:"trusted_proxies"`
}

type AuthConfig struct {
	AccessTokenSecret string `koanf:"access_token_secret" json:"access_token_secret"`
	// AccessTokenExpires 如 "7d"、"12h"，见 xauth.ParseExpiry。
	AccessTokenExpires string `koanf:"access_token_expires" json:"access_token_expires"`
	BcryptCost         int    `koanf:"bcrypt_cost" json:"bcrypt_cost"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" json:"allowed_origins"`
}

type LogConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`
	// Dir 文件日志目录，为空时只输出到控制台。
	Dir        string `koanf:"dir" json:"dir"`
	MaxSizeMB  int    `koanf:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups" json:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days" json:"max_age_days"`
}

type StoreConfig struct {
	Driver    string        `koanf:"driver" json:"driver"`
	Redis     RedisConfig   `koanf:"redis" json:"redis"`
	SlowQuery time.Duration `koanf:"slow_query" json:"slow_query"`
	// ConnectAttempts 启动时检查存储连通性的次数。
	ConnectAttempts uint          `koanf:"connect_attempts" json:"connect_attempts"`
	Cache           CacheConfig   `koanf:"cache" json:"cache"`
	Breaker         BreakerConfig `koanf:"breaker" json:"breaker"`
}

// CacheConfig Redis 驱动下按 ID 查询用户的进程内缓存，Size 为 0 时关闭。
type CacheConfig struct {
	Size int64         `koanf:"size" json:"size"`
	TTL  time.Duration `koanf:"ttl" json:"ttl"`
}

// BreakerConfig Redis 驱动的熔断器，Failures 为 0 时关闭。
type BreakerConfig struct {
	Failures    uint32        `koanf:"failures" json:"failures"`
	OpenTimeout time.Duration `koanf:"open_timeout" json:"open_timeout"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled" json:"enabled"`
	Requests int           `koanf:"requests" json:"requests"`
	Window   time.Duration `koanf:"window" json:"window"`
	Burst    int           `koanf:"burst" json:"burst"`
}

// Rule 转换为限流规则。
func (c RateLimitConfig) Rule() xlimit.Rule {
	return xlimit.Rule{Rate: c.Requests, Period: c.Window, Burst: c.Burst}
}

// OTelConfig 跨度与指标经 OTLP/gRPC 导出，Endpoint 为空时不导出。
type OTelConfig struct {
	Endpoint       string        `koanf:"endpoint" json:"endpoint"`
	Insecure       bool          `koanf:"insecure" json:"insecure"`
	SampleRatio    float64       `koanf:"sample_ratio" json:"sample_ratio"`
	MetricInterval time.Duration `koanf:"metric_interval" json:"metric_interval"`
}

// Enabled 是否配置了导出地址。
func (c OTelConfig) Enabled() bool { return c.Endpoint != "" }

// Export 转换为导出配置。
func (c OTelConfig) Export(version string) xmetrics.ExportConfig {
	return xmetrics.ExportConfig{
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		ServiceName:    ServiceName,
		ServiceVersion: version,
		SampleRatio:    c.SampleRatio,
		MetricInterval: c.MetricInterval,
	}
}

type RedisConfig struct {
	Addr     string `koanf:"addr" json:"addr"`
	Password string `koanf:"password" json:"password"`
	DB       int    `koanf:"db" json:"db"`
	Prefix   string `koanf:"prefix" json:"prefix"`
}

// DefaultConfig 返回默认配置。auth.access_token_secret 没有默认值。
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			TrustedProxies:  []string{},
		},
		Auth: AuthConfig{
			AccessTokenExpires: "7d",
			BcryptCost:         xauth.DefaultCost,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Dir:        "logs",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "xapi:",
			},
			SlowQuery:       200 * time.Millisecond,
			ConnectAttempts: 5,
			Cache:           CacheConfig{Size: 10000, TTL: time.Minute},
			Breaker:         BreakerConfig{Failures: 5, OpenTimeout: 30 * time.Second},
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
		},
		OTel: OTelConfig{
			SampleRatio:    1,
			MetricInterval: xmetrics.DefaultMetricInterval,
		},
	}
}

// LoadConfig 读取配置文件并叠加 XAPI_ 环境变量。
//
// path 为空时只使用默认值与环境变量。返回的 xconf.Config 用于热重载。
func LoadConfig(path string) (Config, xconf.Config, error) {
	var (
		src xconf.Config
		err error
	)
	if path == "" {
		src, err = xconf.NewFromBytes(nil, xconf.FormatYAML, xconf.WithEnvPrefix(EnvPrefix))
	} else {
		src, err = xconf.New(path, xconf.WithEnvPrefix(EnvPrefix))
	}
	if err != nil {
		return Config{}, nil, err
	}

	cfg, err := decodeConfig(src)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, src, nil
}

func decodeConfig(src xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	if err := src.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置。
func (c Config) Validate() error {
	var errs []error
	if c.Auth.AccessTokenSecret == "" {
		errs = append(errs, ErrMissingSecret)
	}
	if _, err := xauth.ParseExpiry(c.Auth.AccessTokenExpires); err != nil {
		errs = append(errs, err)
	}
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Log.Format))
	}
	if !slices.Contains([]string{DriverMemory, DriverRedis}, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 || c.RateLimit.Burst < 0 {
			errs = append(errs, fmt.Errorf("%w: requests=%d window=%s burst=%d",
				ErrInvalidRateLimit, c.RateLimit.Requests, c.RateLimit.Window, c.RateLimit.Burst))
		}
	}
	if c.OTel.Enabled() {
		if err := c.OTel.Export("").Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Redacted 返回脱敏后的配置，用于打印。
func (c Config) Redacted() (xredact.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return xredact.Value{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return xredact.Value{}, err
	}
	return xredact.RedactAny(m), nil
}
