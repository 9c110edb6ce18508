// Package xconf 基于 koanf 的配置加载、环境变量覆盖与热重载。
//
// # 加载顺序
//
//  1. 文件（New，按扩展名识别 YAML/JSON）或字节数据（NewFromBytes）
//  2. 环境变量（WithEnvPrefix），覆盖同名键
//
// 结构体默认值由调用方预置，Unmarshal 只覆盖配置中出现的键：
//
//	cfg := DefaultConfig()
//	c, err := xconf.New("config.yaml", xconf.WithEnvPrefix("XAPI_"))
//	if err != nil {
//	    return err
//	}
//	if err := c.Unmarshal("", &cfg); err != nil {
//	    return err
//	}
//
// # 热重载
//
// Watch 基于 fsnotify 监视配置文件所在目录，内置防抖。
// 重载失败时保留旧配置，并通过回调报告错误。
// Run 阻塞直到 context 结束，适合交给 errgroup 管理。
package xconf
