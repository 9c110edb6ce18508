package app

import (
	"io"
	"path/filepath"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xrotate"
)

// 文件日志名。
const (
	ErrorLogFile    = "error.log"
	CombinedLogFile = "combined.log"
)

// NewLogger 按配置构建日志：控制台输出，加上 dir 下的 error.log（error 及以上）
// 与 combined.log（全部级别）。返回的 cleanup 关闭文件 sink。
func NewLogger(cfg LogConfig, console io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(console).
		SetFormat(cfg.Format).
		SetLevelString(cfg.Level).
		SetEnrich(true)

	if cfg.Dir != "" {
		opts := []xrotate.Option{
			xrotate.WithMaxSize(cfg.MaxSizeMB),
			xrotate.WithMaxBackups(cfg.MaxBackups),
			xrotate.WithMaxAge(cfg.MaxAgeDays),
		}
		b.AddFile(filepath.Join(cfg.Dir, ErrorLogFile), xlog.LevelError, opts...).
			AddFile(filepath.Join(cfg.Dir, CombinedLogFile), xlog.LevelDebug, opts...)
	}
	return b.Build()
}

// applyLogLevel 更新运行中 logger 的级别，返回是否发生变化。
func applyLogLevel(logger xlog.LoggerWithLevel, level string) (bool, error) {
	parsed, err := xlog.ParseLevel(level)
	if err != nil {
		return false, err
	}
	if logger.GetLevel() == parsed {
		return false, nil
	}
	logger.SetLevel(parsed)
	return true, nil
}
