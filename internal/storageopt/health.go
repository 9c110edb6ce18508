package storageopt

import (
	"context"
	"time"
)

// DefaultHealthTimeout 存储健康检查的默认超时。
const DefaultHealthTimeout = 5 * time.Second

// HealthContext 返回带超时的健康检查 context。
// timeout <= 0 时不设超时；ctx 为 nil 时使用 context.Background()。
func HealthContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
