package xctx

import (
	"context"
	"log/slog"
)

// 日志属性 Key，遵循下划线分隔的命名约定。
const (
	KeyRequestID = "request_id"
	KeyUserID    = "user_id"

	requestFieldCount = 2
)

// AppendRequestAttrs 将请求 ID 与用户 ID 追加到 attrs，只追加非空字段。
func AppendRequestAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	rc := Current(ctx)
	if rc == nil {
		return attrs
	}
	attrs = append(attrs, slog.String(KeyRequestID, rc.RequestID))
	if uid := rc.UserID(); uid != "" {
		attrs = append(attrs, slog.String(KeyUserID, uid))
	}
	return attrs
}

// RequestAttrs 从 context 提取请求属性，未绑定时返回 nil。
func RequestAttrs(ctx context.Context) []slog.Attr {
	attrs := AppendRequestAttrs(make([]slog.Attr, 0, requestFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
