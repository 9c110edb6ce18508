// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// Builder 模式，first-error-wins：遇到第一个配置错误后，后续 Set 操作仍可链式调用，
// 错误在 [Builder.Build] 时返回。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("info").
//	    SetFormat("json").
//	    AddFile("logs/error.log", xlog.LevelError).
//	    AddFile("logs/combined.log", xlog.LevelDebug).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
// 控制台输出为 text 或 json；文件 sink 始终为 json，按大小轮转（见 xrotate）。
// 每个文件 sink 只接收不低于其 minLevel 且不低于全局级别的记录。
//
// # 请求关联
//
// EnrichHandler（默认启用）从 context 读取 xctx 绑定的请求上下文，
// 为每条记录追加 request_id 与 user_id。未绑定请求的 context 不追加任何字段。
//
// # 请求生命周期
//
// [RequestStarted] 与 [RequestFinished] 输出请求开始、完成、失败三类事件。
// 查询参数、路由参数、请求头、请求体在输出前脱敏（见 xredact）；
// 失败事件附带终端处理器记录的错误消息与调用栈。
//
// # 全局 Logger
//
//   - [Default]: 获取全局 Logger（惰性初始化：stderr、Info 级别、text 格式）
//   - [SetDefault]: 替换全局 Logger（nil 会被忽略）
//   - [ResetDefault]: 重置为未初始化状态（仅用于测试）
//   - [Debug]、[Info]、[Warn]、[Error]、[Log]、[Stack]: 全局便利函数
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// [ParseLevel] 额外接受 "verbose" 与 "http"，均映射为 debug。
// 派生 logger 共享父级的 LevelVar，[Leveler.SetLevel] 对所有派生 logger 同步生效。
//
// # 延迟求值
//
// [Lazy]、[LazyString]、[LazyErr]、[LazyGroup]：级别被禁用时不执行计算。
package xlog
