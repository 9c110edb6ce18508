// xapid 是 xapikit 的 HTTP 服务进程。
//
// 用法:
//
//	xapid [全局选项] [命令]
//
// 全局选项:
//
//	-c, --config     配置文件路径（YAML 或 JSON），也可通过 XAPI_CONFIG 指定
//	    --log-level  覆盖 log.level
//	    --debug      错误响应附带 errorStack
//
// 命令:
//
//	serve    启动 HTTP 服务（默认）
//	config   打印脱敏后的生效配置
//	seed     写入示例用户 user1..user5@example.com
//
// 退出码:
//
//	0: 成功
//	1: 运行失败
//	2: 参数或配置错误
//
// 示例:
//
//	XAPI_AUTH__ACCESS_TOKEN_SECRET=dev xapid
//	xapid -c /etc/xapid.yaml --log-level debug serve
//	xapid -c /etc/xapid.yaml config
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，通过 -ldflags 注入：
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// 退出码
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xapid",
		Usage:     "xapikit HTTP 服务",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "配置文件路径（YAML 或 JSON）",
				Sources: cli.EnvVars("XAPI_CONFIG"),
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "覆盖 log.level（debug/info/warn/error）",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "错误响应附带 errorStack",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "serve",
		// 退出码由 run 统一映射，不允许 urfave/cli 直接 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := createApp(stdout, stderr).Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr.err)
			return exitUsage
		}
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return exitUsage
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return exitError
	}
	return exitOK
}
