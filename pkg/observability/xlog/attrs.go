package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/xapikit/pkg/context/xctx"
	"github.com/omeyang/xapikit/pkg/security/xredact"
)

// =============================================================================
// 常用属性 Key 常量
// =============================================================================

const (
	KeyError      = "error"
	KeyStack      = "stack"
	KeyDuration   = "duration"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyIP         = "ip"
	KeyUserAgent  = "user_agent"
	KeyStatusCode = "status_code"
	KeyComponent  = "component"
	KeyOperation  = "operation"

	// 与 xctx 注入的字段保持一致
	KeyRequestID = xctx.KeyRequestID
	KeyUserID    = xctx.KeyUserID
)

// =============================================================================
// 便捷属性构造函数
// =============================================================================

// Err 创建错误属性，err 为 nil 时返回空属性（会被 slog 忽略）
//
//	if err != nil {
//	    logger.Error(ctx, "operation failed", xlog.Err(err))
//	}
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 人类可读的耗时，如 "1.5s"
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// DurationMS 整数毫秒耗时，负值记为 0
func DurationMS(d time.Duration) slog.Attr {
	return slog.Int64(KeyDurationMS, max(d.Milliseconds(), 0))
}

// Component 组件名
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 操作名
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 计数
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// StatusCode HTTP 状态码
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// Method HTTP 方法
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path 请求路径
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// URL 原始请求 URL（含查询串）
func URL(u string) slog.Attr {
	return slog.String(KeyURL, u)
}

// Redacted 对任意 JSON-like 值脱敏后作为属性输出
func Redacted(key string, v any) slog.Attr {
	return slog.Any(key, xredact.RedactAny(v))
}
