package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/omeyang/xapikit/pkg/observability/xrotate"
)

// ReplaceAttrFunc 属性替换函数类型
//
// 用于字段重命名、过滤等日志治理场景。返回空 Key 的 Attr 会移除该属性。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// fileSink 文件输出的声明，Build 时才创建轮转器
type fileSink struct {
	filename string
	minLevel Level
	opts     []xrotate.Option
}

// Builder 日志配置构建器
//
// first-error-wins：遇到第一个配置错误后，后续调用仍可链式进行，错误在 Build 时返回。
type Builder struct {
	output       io.Writer
	levelVar     *slog.LevelVar
	format       string
	addSource    bool
	enableEnrich bool
	replaceAttr  ReplaceAttrFunc
	files        []fileSink
	onError      func(error)
	err          error
}

// New 创建配置构建器：stderr、Info 级别、text 格式、启用 enrich
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:       os.Stderr,
		levelVar:     levelVar,
		format:       "text",
		enableEnrich: true,
	}
}

// SetOutput 设置控制台输出目标。nil 表示只写文件 sink。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// SetLevel 设置全局最低级别，对控制台与所有文件 sink 生效
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.setErr(err)
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置控制台格式：text 或 json，空值视为 text。文件 sink 始终为 json。
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.setErr(fmt.Errorf("xlog: unknown format %q", format))
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否从 context 注入 request_id、user_id。默认启用。
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enableEnrich = enable
	return b
}

// AddFile 追加一个按大小轮转的 JSON 文件 sink，只接收 minLevel 及以上的记录。
//
//	xlog.New().
//	    AddFile("logs/error.log", xlog.LevelError).
//	    AddFile("logs/combined.log", xlog.LevelDebug)
func (b *Builder) AddFile(filename string, minLevel Level, opts ...xrotate.Option) *Builder {
	if filename == "" {
		b.setErr(xrotate.ErrEmptyFilename)
		return b
	}
	b.files = append(b.files, fileSink{filename: filename, minLevel: minLevel, opts: opts})
	return b
}

// SetOnError 设置内部错误回调
//
// Handler.Handle 失败（磁盘满、writer 异常）时调用。回调在写日志的路径上同步执行，
// 应保持轻量；回调内部再次触发的日志错误不会递归进入回调。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// SetReplaceAttr 设置属性替换函数，对控制台与文件 sink 均生效
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，关闭所有文件 sink，只执行一次
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	var (
		handlers []slog.Handler
		closers  []io.Closer
	)

	if b.output != nil {
		opts := b.handlerOptions(b.levelVar)
		if b.format == "json" {
			handlers = append(handlers, slog.NewJSONHandler(b.output, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(b.output, opts))
		}
	}

	for _, f := range b.files {
		rotator, err := xrotate.NewLumberjack(f.filename, f.opts...)
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("xlog: file sink %q: %w", f.filename, err)
		}
		closers = append(closers, rotator)
		floor := &floorLeveler{floor: slog.Level(f.minLevel), base: b.levelVar}
		handlers = append(handlers, slog.NewJSONHandler(rotator, b.handlerOptions(floor)))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, b.handlerOptions(b.levelVar))
	case 1:
		handler = handlers[0]
	default:
		handler = newFanoutHandler(handlers...)
	}

	if b.enableEnrich {
		enriched, err := NewEnrichHandler(handler)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		handler = enriched
	}

	logger := newXlogger(handler, b.levelVar, b.onError, b.addSource)

	var once sync.Once
	cleanup := func() error {
		var err error
		once.Do(func() { err = closeAll(closers) })
		return err
	}
	return logger, cleanup, nil
}

func (b *Builder) handlerOptions(level slog.Leveler) *slog.HandlerOptions {
	opts := &slog.HandlerOptions{Level: level, AddSource: b.addSource}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}
	return opts
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// floorLeveler 取全局级别与 sink 最低级别中较高者
type floorLeveler struct {
	floor slog.Level
	base  *slog.LevelVar
}

func (f *floorLeveler) Level() slog.Level {
	return max(f.floor, f.base.Level())
}
