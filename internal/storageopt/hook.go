package storageopt

import (
	"context"
	"log/slog"
	"time"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

// 查询日志消息。
const (
	MsgQueryExecuted = "Store query executed"
	MsgSlowQuery     = "Slow store query"
)

// QueryInfo 一次存储查询的描述。
type QueryInfo struct {
	// Operation 查询名，如 "users.find_by_email"。
	Operation string
	// Params 查询参数，记录日志前脱敏。
	Params   map[string]any
	Duration time.Duration
	Err      error
}

// QueryHook 查询完成后同步调用，不应阻塞。
type QueryHook func(ctx context.Context, info QueryInfo)

// Measure 执行 fn，并把耗时与结果报告给 hook。hook 为 nil 时直接执行。
func Measure(ctx context.Context, hook QueryHook, op string, params map[string]any, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if hook != nil {
		hook(ctx, QueryInfo{Operation: op, Params: params, Duration: time.Since(start), Err: err})
	}
	return err
}

// QueryLogger 返回记录查询日志的 hook。
//
// 每次查询以 debug 级别记录 MsgQueryExecuted；耗时达到 slow 时
// 额外以 warn 级别记录 MsgSlowQuery，slow <= 0 表示不检测。
// 出错的查询在 debug 日志中附带 error 字段。
func QueryLogger(logger xlog.Logger, slow time.Duration) QueryHook {
	if logger == nil {
		logger = xlog.Default()
	}
	logger = logger.With(xlog.Component("store"))

	return func(ctx context.Context, info QueryInfo) {
		attrs := []slog.Attr{
			xlog.Operation(info.Operation),
			xlog.DurationMS(info.Duration),
			xlog.Redacted("params", info.Params),
		}
		if info.Err != nil {
			logger.Debug(ctx, MsgQueryExecuted, append(attrs, xlog.Err(info.Err))...)
		} else {
			logger.Debug(ctx, MsgQueryExecuted, attrs...)
		}
		if slow > 0 && info.Duration >= slow {
			logger.Warn(ctx, MsgSlowQuery, append(attrs, slog.Duration("threshold", slow))...)
		}
	}
}

// Chain 依次调用多个 hook，忽略 nil。
func Chain(hooks ...QueryHook) QueryHook {
	return func(ctx context.Context, info QueryInfo) {
		for _, h := range hooks {
			if h != nil {
				h(ctx, info)
			}
		}
	}
}
