package xcache

import "errors"

var (
	// ErrEmptyKey key 为空字符串。
	ErrEmptyKey = errors.New("xcache: empty key")

	// ErrNilLoader 回源函数为 nil。
	ErrNilLoader = errors.New("xcache: nil loader function")

	// ErrClosed 缓存已关闭。
	ErrClosed = errors.New("xcache: cache closed")

	// ErrLoadPanic 回源函数发生 panic。
	ErrLoadPanic = errors.New("xcache: load function panicked")

	// ErrInvalidConfig 配置参数无效。
	ErrInvalidConfig = errors.New("xcache: invalid configuration")
)
