// Package xctx 提供请求级关联上下文。
//
// 每个请求在入口处通过 [Bind] 获得一个 [RequestContext]，
// 它挂在该请求的 context.Context 上，沿调用链（包括 goroutine 与 I/O 等待之后的续行）
// 隐式可见，不需要逐层显式传参。请求之间的隔离由 context 树结构保证，
// 包内没有任何进程级可变状态。
//
// # 字段
//
//	request_id  : 绑定时生成的 UUID，同时写入 X-Request-ID 响应头
//	method/url/ip/user_agent/query/headers : 绑定时复制，之后只读
//	params      : 路由参数，路由匹配后由处理器包装层补充
//	body        : 请求体快照，保存前经 xredact 脱敏
//	user_id     : 认证通过后设置
//	failure     : 终端错误处理器记录的错误，每个请求最多一次
//
// # 命名约定
//
//	Xxx(ctx)        - 读取：未绑定时返回零值，不会失败
//	RequireXxx(ctx) - 强制读取：缺失时返回错误
//	SetXxx(ctx, v)  - 写入：未绑定时返回 ErrNotBound
//
// # 哨兵错误
//
//	ErrNilContext       - context 为 nil
//	ErrNotBound         - 未绑定请求上下文
//	ErrAlreadyRecorded  - 错误已记录
//	ErrMissingRequestID - request_id 缺失
//
// # HTTP 集成
//
//	handler = xctx.HTTPMiddleware(
//	    xctx.WithMaxBodyBytes(1<<20),
//	    xctx.WithTrustedProxies(proxies),
//	)(handler)
//
// 日志集成见 [AppendRequestAttrs]，xlog 的 EnrichHandler 基于它注入 request_id 与 user_id。
package xctx
