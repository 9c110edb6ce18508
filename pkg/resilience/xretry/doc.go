// Package xretry 基于 [avast/retry-go/v5] 的指数退避重试。
//
//	err := xretry.Do(ctx, func(ctx context.Context) error {
//	    return client.Ping(ctx).Err()
//	}, xretry.WithAttempts(5), xretry.WithOnRetry(func(n uint, err error) {
//	    logger.Warn(ctx, "ping failed, retrying", xlog.Err(err))
//	}))
//
// fn 返回 Permanent 包装的错误时立即停止重试。
// ctx 结束时停止等待，返回的错误同时包含 ctx 错误与最后一次失败原因。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
