// Package context 提供请求级上下文相关的子包。
//
// 子包列表：
//   - xctx: 请求上下文绑定，保存请求 ID、客户端信息、认证主体与待记录的错误
//
// 设计原则：
//   - 请求级信息通过 context.Context 传递，不使用全局变量
//   - 由 HTTP 中间件在入口处绑定，业务代码只读取
package context
