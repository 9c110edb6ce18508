package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

func TestNewLogger_Files(t *testing.T) {
	cfg := DefaultConfig().Log
	cfg.Dir = t.TempDir()
	cfg.Level = "debug"

	var console bytes.Buffer
	logger, cleanup, err := NewLogger(cfg, &console)
	require.NoError(t, err)

	ctx := context.Background()
	logger.Info(ctx, "hello")
	logger.Error(ctx, "boom")
	require.NoError(t, cleanup())

	combined, err := os.ReadFile(filepath.Join(cfg.Dir, CombinedLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(combined), "hello")
	assert.Contains(t, string(combined), "boom")

	errorsOnly, err := os.ReadFile(filepath.Join(cfg.Dir, ErrorLogFile))
	require.NoError(t, err)
	assert.NotContains(t, string(errorsOnly), "hello")
	assert.Contains(t, string(errorsOnly), "boom")

	assert.Contains(t, console.String(), "hello")
}

func TestNewLogger_ConsoleOnly(t *testing.T) {
	cfg := DefaultConfig().Log
	cfg.Dir = ""
	cfg.Level = "warn"

	var console bytes.Buffer
	logger, cleanup, err := NewLogger(cfg, &console)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	logger.Info(context.Background(), "quiet")
	logger.Warn(context.Background(), "loud")
	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "loud")
}

func TestNewLogger_BadRotation(t *testing.T) {
	cfg := DefaultConfig().Log
	cfg.Dir = t.TempDir()
	cfg.MaxBackups = 0
	cfg.MaxAgeDays = 0

	_, _, err := NewLogger(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApplyLogLevel(t *testing.T) {
	cfg := DefaultConfig().Log
	cfg.Dir = ""
	logger, cleanup, err := NewLogger(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	changed, err := applyLogLevel(logger, "info")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = applyLogLevel(logger, "debug")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())

	_, err = applyLogLevel(logger, "chatty")
	assert.Error(t, err)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
}
