// Package xrun 进程生命周期：errgroup 服务组、信号处理与 HTTP 服务器的优雅关闭。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger)},
//	    xrun.HTTPServer(srv, cfg.Server.ShutdownTimeout),
//	    watcher.Run,
//	)
//
// 收到 SIGINT/SIGTERM 时所有服务的 context 取消，Run 返回 *SignalError，
// errors.Is(err, xrun.ErrSignal) 为 true。
package xrun
