package xconf

// Options 配置加载选项。
type Options struct {
	// Delim 配置键的分隔符，默认 "."。
	Delim string

	// Tag Unmarshal 使用的结构体标签，默认 "koanf"。
	Tag string

	// EnvPrefix 非空时，文件之后再叠加以此为前缀的环境变量。
	EnvPrefix string
}

// Option 配置选项函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Delim: ".",
		Tag:   "koanf",
	}
}

// WithDelim 设置配置键分隔符。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

// WithEnvPrefix 启用环境变量覆盖。
//
// 变量名去掉前缀后转小写，双下划线表示层级：
// 前缀 "XAPI_" 时，XAPI_AUTH__ACCESS_TOKEN_SECRET 覆盖 auth.access_token_secret。
// 含逗号的值按逗号拆分为列表。
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}
