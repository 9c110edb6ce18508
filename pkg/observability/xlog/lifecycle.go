package xlog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mssola/useragent"

	"github.com/omeyang/xapikit/pkg/context/xctx"
)

// =============================================================================
// 请求生命周期事件
//
// 每个请求三类事件之一或两个：开始、完成（status < 400）、失败（status >= 400）。
// 事件从 xctx 读取请求描述，所有映射类字段输出前脱敏；未绑定请求时照常输出，不含请求字段。
// =============================================================================

// 事件消息
const (
	MsgRequestStarted   = "Incoming request"
	MsgRequestCompleted = "Request completed"
	MsgRequestFailed    = "Request failed"
)

// 事件字段
const (
	KeyClient  = "client"
	KeyQuery   = "query"
	KeyParams  = "params"
	KeyBody    = "body"
	KeyHeaders = "headers"
)

// RequestStarted 记录请求开始事件，不包含请求体。l 为 nil 时使用 Default()。
func RequestStarted(ctx context.Context, l Logger) {
	if l == nil {
		l = Default()
	}
	rc := xctx.Current(ctx)
	if rc == nil {
		l.Info(ctx, MsgRequestStarted)
		return
	}
	s := rc.Snapshot()
	l.Info(ctx, MsgRequestStarted,
		Method(s.Method),
		URL(s.URL),
		slog.String(KeyIP, s.IP),
		slog.String(KeyUserAgent, s.UserAgent),
		clientAttr(s.UserAgent),
		Redacted(KeyQuery, s.Query),
		Redacted(KeyParams, s.Params),
	)
}

// RequestFinished 记录请求结束事件。
//
// status < 400 时以 Info 记录完成事件；否则以 Error 记录失败事件，
// 额外附带脱敏后的请求体、查询参数、路由参数、请求头，以及终端处理器记录的错误。
func RequestFinished(ctx context.Context, l Logger, status int, elapsed time.Duration) {
	if l == nil {
		l = Default()
	}
	attrs := make([]slog.Attr, 0, 9)

	rc := xctx.Current(ctx)
	var s xctx.Snapshot
	if rc != nil {
		s = rc.Snapshot()
		attrs = append(attrs, Method(s.Method), URL(s.URL))
	}
	attrs = append(attrs, StatusCode(status), DurationMS(elapsed))

	if status < http.StatusBadRequest {
		l.Info(ctx, MsgRequestCompleted, attrs...)
		return
	}

	if rc != nil {
		attrs = append(attrs,
			slog.Any(KeyBody, s.Body),
			Redacted(KeyQuery, s.Query),
			Redacted(KeyParams, s.Params),
			Redacted(KeyHeaders, s.Headers),
		)
		if f := s.Failure; f != nil {
			attrs = append(attrs, slog.Group(KeyError,
				slog.String("message", f.Message),
				slog.String(KeyStack, f.Stack),
			))
		}
	}
	l.Error(ctx, MsgRequestFailed, attrs...)
}

// clientAttr 解析 User-Agent，只在事件实际输出时执行。
func clientAttr(ua string) slog.Attr {
	return LazyGroup(KeyClient, func() []slog.Attr {
		if ua == "" {
			return nil
		}
		parsed := useragent.New(ua)
		name, version := parsed.Browser()
		return []slog.Attr{
			slog.String("browser", name),
			slog.String("version", version),
			slog.String("os", parsed.OS()),
			slog.Bool("mobile", parsed.Mobile()),
			slog.Bool("bot", parsed.Bot()),
		}
	})
}
