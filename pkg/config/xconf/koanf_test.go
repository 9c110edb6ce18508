package xconf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// 测试辅助函数
// =============================================================================

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type serverSection struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	TrustedProxies  []string      `koanf:"trusted_proxies"`
}

type testConfig struct {
	Server serverSection `koanf:"server"`
	Debug  bool          `koanf:"debug"`
	Auth   struct {
		AccessTokenSecret string `koanf:"access_token_secret"`
	} `koanf:"auth"`
}

// =============================================================================
// 加载测试
// =============================================================================

func TestNew_YAMLAndJSON(t *testing.T) {
	yamlPath := writeFile(t, "config.yml", "server:\n  addr: \":8080\"\n")
	jsonPath := writeFile(t, "config.json", `{"server":{"addr":":9090"}}`)

	c, err := New(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Client().String("server.addr"))
	assert.Equal(t, FormatYAML, c.Format())
	assert.Equal(t, yamlPath, c.Path())

	c, err = New(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Client().String("server.addr"))
	assert.Equal(t, FormatJSON, c.Format())
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, "bad.yaml", "server: [unclosed"))
	assert.ErrorIs(t, err, ErrParseFailed)

	_, err = New(writeFile(t, "bad.json", "{"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	c, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, c.Client().Keys())
	assert.Empty(t, c.Path())
	assert.ErrorIs(t, c.Reload(), ErrNotWatchable)

	_, err = NewFromBytes([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnmarshal_KeepsPresetDefaults(t *testing.T) {
	c, err := NewFromBytes([]byte("server:\n  shutdown_timeout: 5s\n"), FormatYAML)
	require.NoError(t, err)

	cfg := testConfig{Server: serverSection{Addr: ":3000"}}
	require.NoError(t, c.Unmarshal("", &cfg))

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestUnmarshal_Error(t *testing.T) {
	c, err := NewFromBytes([]byte("debug: [1, 2]\n"), FormatYAML)
	require.NoError(t, err)

	var cfg testConfig
	assert.ErrorIs(t, c.Unmarshal("", &cfg), ErrUnmarshalFailed)
	assert.Panics(t, func() { MustUnmarshal(c, "", &cfg) })
}

// =============================================================================
// 环境变量覆盖测试
// =============================================================================

func TestEnvOverlay(t *testing.T) {
	t.Setenv("XAPI_SERVER__ADDR", ":4000")
	t.Setenv("XAPI_AUTH__ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("XAPI_SERVER__TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")
	t.Setenv("XAPI_DEBUG", "true")
	t.Setenv("OTHER_SERVER__ADDR", ":1")

	path := writeFile(t, "config.yaml", "server:\n  addr: \":8080\"\n  shutdown_timeout: 3s\n")
	c, err := New(path, WithEnvPrefix("XAPI_"))
	require.NoError(t, err)

	var cfg testConfig
	require.NoError(t, c.Unmarshal("", &cfg))
	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "s3cret", cfg.Auth.AccessTokenSecret)
	assert.True(t, cfg.Debug)
}

func TestEnvOverlay_WithoutFile(t *testing.T) {
	t.Setenv("XAPI_LOG__LEVEL", "debug")

	c, err := NewFromBytes(nil, FormatYAML, WithEnvPrefix("XAPI_"))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Client().String("log.level"))
}

// =============================================================================
// 重载测试
// =============================================================================

func TestReload(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\n")
	c, err := New(path)
	require.NoError(t, err)
	old := c.Client()

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	require.NoError(t, c.Reload())

	assert.Equal(t, "debug", c.Client().String("log.level"))
	assert.Equal(t, "info", old.String("log.level"))
}

func TestReload_FailureKeepsOldConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\n")
	c, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log: [broken"), 0o600))
	assert.ErrorIs(t, c.Reload(), ErrParseFailed)
	assert.Equal(t, "info", c.Client().String("log.level"))

	require.NoError(t, os.Remove(path))
	assert.ErrorIs(t, c.Reload(), ErrLoadFailed)
}

func TestReload_Concurrent(t *testing.T) {
	path := writeFile(t, "config.yaml", "n: 1\n")
	c, err := New(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Reload())
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, 1, c.Client().Int("n"))
		}()
	}
	wg.Wait()
}
