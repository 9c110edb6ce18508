// Package xlimit 请求限流：进程内令牌桶与基于 Redis 的分布式 GCRA。
//
// 两种实现都满足 Limiter：
//
//	local, _ := xlimit.NewLocal(xlimit.PerMinute(20))
//	dist, _ := xlimit.NewRedis(client, xlimit.PerMinute(20), xlimit.WithKeyPrefix("xapi:limit:"))
//
// HTTPMiddleware 按键（默认客户端 IP）限流，超限时交给 onLimited 写响应。
// 限流器自身出错时放行请求并记录日志。
package xlimit
