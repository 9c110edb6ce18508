// Package resilience 提供依赖故障时保护服务的子包。
//
// 子包列表：
//   - xretry: 指数退避重试，基于 avast/retry-go
//   - xbreaker: 熔断器，基于 sony/gobreaker
//   - xlimit: 令牌桶限流，进程内（golang-lru）与分布式（redis_rate）两种实现
package resilience
