// Package xmetrics 请求与存储操作的可观测性接口（tracing + metrics）。
//
// 业务代码只依赖 Observer/Span 接口，默认实现基于 OpenTelemetry：
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "users.store",
//		Operation: "find_by_email",
//		Kind:      xmetrics.KindClient,
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// # 指标
//
//   - xapi.operation.total
//   - xapi.operation.duration（秒）
//
// 统一属性：component / operation / status。跨度额外带 request.id（请求内调用时）。
//
// # 导出
//
// 未指定 provider 时数据进入 otel 全局 provider。经 OTLP/gRPC 导出：
//
//	p, err := xmetrics.NewOTLPProviders(ctx, xmetrics.ExportConfig{
//		Endpoint:    "otel-collector:4317",
//		Insecure:    true,
//		ServiceName: "xapid",
//		SampleRatio: 1,
//	})
//	defer p.Shutdown(ctx)
//	obs, _ := xmetrics.NewOTelObserver(p.Options()...)
package xmetrics
