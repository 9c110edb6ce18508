// Package xhttp HTTP 请求管线的终端部分。
//
// 中间件顺序（外到内）：
//
//	CORS → xctx.HTTPMiddleware → xhttp.AccessLog → Terminal.Recover → 路由
//
// 路由处理函数使用 [HandlerFunc] 返回错误，经 [Terminal.Wrap] 适配；
// 所有错误（包括未匹配路由与 panic）都由 [Terminal.Handle] 转换为统一的错误响应。
package xhttp
