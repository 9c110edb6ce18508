package xctx

import "errors"

// =============================================================================
// Context Key 类型定义
// =============================================================================

// contextKey 包私有类型，避免与其他包的 context key 冲突。
type contextKey string

const keyRequest = contextKey("xctx:request")

// =============================================================================
// 错误
// =============================================================================

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrNotBound 表示 context 中没有绑定请求上下文。
	ErrNotBound = errors.New("xctx: request context not bound")

	// ErrAlreadyRecorded 表示该请求已记录过错误。
	ErrAlreadyRecorded = errors.New("xctx: error already recorded")

	// ErrMissingRequestID request_id 缺失
	ErrMissingRequestID = errors.New("xctx: missing request_id")
)
