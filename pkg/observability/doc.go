// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，自动附带请求 ID 与用户 ID
//   - xmetrics: 统一观测接口，OpenTelemetry 指标与追踪实现
//   - xrotate: 日志文件轮转
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 自动从 context 中提取请求信息注入日志
//   - 支持运行时调整日志级别
package observability
