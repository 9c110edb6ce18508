// Package xauth 访问 Token 与密码哈希。
//
//   - [Tokens]: HS256 JWT 签发与校验，claim id 为用户 ID
//   - [Passwords]: bcrypt 哈希与比对
//   - [Guard]: Bearer Token 中间件，失败交给终端错误处理器
//
// 有效期用 [ParseExpiry] 解析，支持 "7d" 这类按天的写法。
//
//	guard := xauth.NewGuard(tokens, terminal.Handle)
//	r.With(guard.Require).Get("/api/user/me", terminal.Wrap(users.Me))
package xauth
