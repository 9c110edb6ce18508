// Package xbreaker 基于 [sony/gobreaker/v2] 的熔断器。
//
// 连续失败达到阈值后熔断，熔断期间 Do 直接返回 ErrOpen；
// 超时后进入半开状态，放行少量试探请求，成功则恢复。
//
//	b := xbreaker.New("users.store", xbreaker.WithFailureThreshold(5))
//	err := b.Do(ctx, func(ctx context.Context) error {
//	    return client.Get(ctx, key).Err()
//	})
//	if errors.Is(err, xbreaker.ErrOpen) { ... }
//
// [sony/gobreaker/v2]: https://github.com/sony/gobreaker
package xbreaker
