package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xapikit/internal/app"
	"github.com/omeyang/xapikit/internal/users"
	"github.com/omeyang/xapikit/pkg/config/xconf"
	"github.com/omeyang/xapikit/pkg/util/xjson"
)

// 全局 flag 名
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagDebug    = "debug"
)

// usageError 参数或配置错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "启动 HTTP 服务",
			Action: cmdServe,
		},
		{
			Name:   "config",
			Usage:  "打印脱敏后的生效配置",
			Action: cmdConfig,
		},
		{
			Name:   "seed",
			Usage:  "写入示例用户（需要 store.driver=redis）",
			Action: cmdSeed,
		},
	}
}

// loadConfig 读取配置并应用命令行覆盖。
func loadConfig(cmd *cli.Command) (app.Config, xconf.Config, error) {
	cfg, src, err := app.LoadConfig(cmd.String(flagConfig))
	if err != nil {
		return app.Config{}, nil, &usageError{err: err}
	}
	if cmd.IsSet(flagLogLevel) {
		cfg.Log.Level = cmd.String(flagLogLevel)
	}
	if cmd.IsSet(flagDebug) {
		cfg.Debug = cmd.Bool(flagDebug)
	}
	if err := cfg.Validate(); err != nil {
		return app.Config{}, nil, &usageError{err: err}
	}
	return cfg, src, nil
}

func cmdServe(ctx context.Context, cmd *cli.Command) (err error) {
	cfg, src, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	srv, err := app.New(cfg, src, os.Stdout, app.WithVersion(Version))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); err == nil {
			err = cerr
		}
	}()
	return srv.Run(ctx)
}

func cmdConfig(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	v, err := cfg.Redacted()
	if err != nil {
		return err
	}
	return xjson.Write(cmd.Root().Writer, v)
}

func cmdSeed(ctx context.Context, cmd *cli.Command) (err error) {
	cfg, src, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store.Driver != app.DriverRedis {
		return &usageError{err: fmt.Errorf("seed requires store.driver=%s, got %q", app.DriverRedis, cfg.Store.Driver)}
	}
	srv, err := app.New(cfg, src, cmd.Root().ErrWriter, app.WithVersion(Version))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); err == nil {
			err = cerr
		}
	}()
	if err := srv.WaitForStore(ctx); err != nil {
		return err
	}

	seeds := users.SeedUsers()
	n, err := srv.Users().Seed(ctx, seeds)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "seeded %d users (%d already present)\n", n, len(seeds)-n)
	return err
}
