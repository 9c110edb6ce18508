// Package app 组装 xapid 服务：配置加载、日志、存储、认证与 HTTP 路由。
//
// 配置来源依次为默认值、配置文件（YAML 或 JSON）与 XAPI_ 前缀的环境变量，
// 环境变量中双下划线表示层级：
//
//	XAPI_AUTH__ACCESS_TOKEN_SECRET=...  → auth.access_token_secret
//	XAPI_CORS__ALLOWED_ORIGINS=a,b      → cors.allowed_origins: [a, b]
//
// 路由：
//
//	GET  /                    欢迎信息
//	GET  /api                 存活检查
//	POST /api/auth/register   注册
//	POST /api/auth/login      登录，返回访问令牌
//	GET  /api/user            用户分页列表
//	GET  /api/user/me         当前用户，需要 Bearer 令牌
//
// /api/auth 下的路由按客户端 IP 限流（rate_limit.*），redis 驱动下多实例共享配额，
// 限流后端出错时放行。
//
// 配置 otel.endpoint 后，请求与存储的跨度和指标经 OTLP/gRPC 导出。
//
// 运行期间监视配置文件，log.level 的修改即时生效，其余配置需要重启。
package app
