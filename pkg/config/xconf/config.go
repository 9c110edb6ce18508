package xconf

import "github.com/knadh/koanf/v2"

// Format 配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 配置接口。基础读取操作直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回当前的 koanf 实例。Reload 后旧实例仍可读，但数据已过期。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置解码到 target，path 为空时解码全部。
	// target 中已有的值在配置缺少对应键时保持不变，可用于预置默认值。
	Unmarshal(path string, target any) error

	// Reload 重新读取配置文件并叠加环境变量，并发安全。
	// 从字节数据创建的 Config 返回 ErrNotWatchable。
	Reload() error

	// Path 返回配置文件路径，从字节数据创建时为空。
	Path() string

	Format() Format
}

// MustUnmarshal 同 Config.Unmarshal，失败时 panic。仅用于程序启动阶段。
func MustUnmarshal(cfg Config, path string, target any) {
	if err := cfg.Unmarshal(path, target); err != nil {
		panic(err)
	}
}
