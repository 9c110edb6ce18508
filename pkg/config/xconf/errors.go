package xconf

import "errors"

// 配置加载和解析相关错误。
var (
	ErrEmptyPath         = errors.New("xconf: empty config path")
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")
	ErrLoadFailed        = errors.New("xconf: failed to load config")
	ErrParseFailed       = errors.New("xconf: failed to parse config")
	ErrUnmarshalFailed   = errors.New("xconf: failed to unmarshal config")
)

// 监视相关错误。
var (
	// ErrNotWatchable 配置不是从文件创建的，无法监视或重载。
	ErrNotWatchable = errors.New("xconf: config was not loaded from a file")
	ErrWatchFailed  = errors.New("xconf: failed to watch config")
)
