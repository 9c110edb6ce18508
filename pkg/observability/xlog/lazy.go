package xlog

import "log/slog"

// =============================================================================
// 延迟求值
//
// 属性值实现 slog.LogValuer，只有 handler 真正输出记录时才调用 fn。
// 级别被禁用时 fn 不会执行；接口装箱的一次分配仍然存在。
// =============================================================================

type lazyValue func() any

func (f lazyValue) LogValue() slog.Value { return slog.AnyValue(f()) }

// Lazy 返回延迟求值的属性
//
//	logger.Debug(ctx, "store query",
//	    xlog.Lazy("params", func() any { return xredact.RedactAny(params) }))
func Lazy(key string, fn func() any) slog.Attr {
	if fn == nil {
		return slog.Any(key, nil)
	}
	return slog.Any(key, lazyValue(fn))
}

type lazyString func() string

func (f lazyString) LogValue() slog.Value { return slog.StringValue(f()) }

// LazyString 返回延迟求值的字符串属性
func LazyString(key string, fn func() string) slog.Attr {
	if fn == nil {
		return slog.String(key, "")
	}
	return slog.Any(key, lazyString(fn))
}

type lazyError func() error

func (f lazyError) LogValue() slog.Value {
	if err := f(); err != nil {
		return slog.StringValue(err.Error())
	}
	return slog.Value{}
}

// LazyErr 返回 key 为 "error" 的延迟错误属性，fn 返回 nil 时输出空值
func LazyErr(fn func() error) slog.Attr {
	if fn == nil {
		return slog.Any(KeyError, nil)
	}
	return slog.Any(KeyError, lazyError(fn))
}

type lazyGroup func() []slog.Attr

func (f lazyGroup) LogValue() slog.Value { return slog.GroupValue(f()...) }

// LazyGroup 返回延迟求值的分组属性
//
//	logger.Info(ctx, "Incoming request",
//	    xlog.LazyGroup("client", func() []slog.Attr { return parseUA(ua) }))
func LazyGroup(key string, fn func() []slog.Attr) slog.Attr {
	if fn == nil {
		return slog.Group(key)
	}
	return slog.Any(key, lazyGroup(fn))
}
