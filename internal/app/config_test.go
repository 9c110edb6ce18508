package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
	"github.com/omeyang/xapikit/pkg/security/xredact"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "7d", cfg.Auth.AccessTokenExpires)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, uint(5), cfg.Store.ConnectAttempts)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.Rule().Rate)
	assert.False(t, cfg.OTel.Enabled())
	assert.Equal(t, float64(1), cfg.OTel.SampleRatio)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)

	cfg.Auth.AccessTokenSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.AccessTokenExpires = "soon"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Store.Driver = "mongo"
	cfg.RateLimit.Window = 0
	cfg.OTel.Endpoint = "collector:4317"
	cfg.OTel.SampleRatio = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.ErrorIs(t, err, ErrUnknownLogFormat)
	assert.ErrorIs(t, err, ErrUnknownDriver)
	assert.ErrorIs(t, err, ErrInvalidRateLimit)
	assert.ErrorIs(t, err, xmetrics.ErrInvalidSampleRatio)
	assert.Contains(t, err.Error(), "soon")
	assert.Contains(t, err.Error(), "loud")
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("XAPI_AUTH__ACCESS_TOKEN_SECRET", "from-env")
	t.Setenv("XAPI_SERVER__ADDR", ":8080")
	t.Setenv("XAPI_CORS__ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("XAPI_STORE__SLOW_QUERY", "1s")
	t.Setenv("XAPI_DEBUG", "true")
	t.Setenv("XAPI_RATE_LIMIT__ENABLED", "false")
	t.Setenv("XAPI_OTEL__ENDPOINT", "collector:4317")
	t.Setenv("XAPI_OTEL__SAMPLE_RATIO", "0.25")

	cfg, src, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, src.Path())

	assert.Equal(t, "from-env", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Second, cfg.Store.SlowQuery)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "collector:4317", cfg.OTel.Export("1.0.0").Endpoint)
	assert.Equal(t, 0.25, cfg.OTel.SampleRatio)
	// 未覆盖的键保持默认值
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xapid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  access_token_secret: from-file
  access_token_expires: 12h
log:
  level: debug
  format: json
store:
  driver: redis
  redis:
    addr: redis:6379
    db: 2
`), 0o600))
	t.Setenv("XAPI_LOG__LEVEL", "warn")

	cfg, src, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path())

	assert.Equal(t, "from-file", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, "12h", cfg.Auth.AccessTokenExpires)
	assert.Equal(t, "warn", cfg.Log.Level, "env overrides file")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "xapi:", cfg.Store.Redis.Prefix)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = LoadConfig("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.AccessTokenSecret = "s3cret"
	cfg.Store.Redis.Password = "hunter2"

	v, err := cfg.Redacted()
	require.NoError(t, err)

	auth, ok := v.Get("auth")
	require.True(t, ok)
	secret, ok := auth.Get("access_token_secret")
	require.True(t, ok)
	assert.Equal(t, xredact.Marker, secret.Scalar())

	store, _ := v.Get("store")
	redis, _ := store.Get("redis")
	password, _ := redis.Get("password")
	assert.Equal(t, xredact.Marker, password.Scalar())
	addr, _ := redis.Get("addr")
	assert.Equal(t, "127.0.0.1:6379", addr.Scalar())

	data, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
	assert.NotContains(t, string(data), "hunter2")
}
