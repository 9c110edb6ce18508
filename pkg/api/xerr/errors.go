package xerr

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// =============================================================================
// 错误分类
// =============================================================================

// Kind 错误形态。
type Kind int

const (
	// KindSimple 状态码 + 若干可读消息。
	KindSimple Kind = iota
	// KindValidation 状态码 + 摘要 + 字段级错误列表。
	KindValidation
)

// String 返回 Kind 的可读名称。
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindValidation:
		return "validation"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// messageSeparator 多条消息拼接为一条响应消息时的分隔符。
const messageSeparator = ", "

// Info 可在任意层抛出的 API 错误。
//
// Info 实现 error，沿普通的 Go 错误返回路径向上传播，
// 抛出处不记录日志也不格式化，由终端处理器统一转换为响应。
type Info struct {
	// Status HTTP 状态码。
	Status int
	// Messages 面向客户端的消息，按顺序拼接。
	Messages []string
	// Kind 错误形态。
	Kind Kind
	// ValidationErrors 字段级错误，仅 KindValidation 使用。
	ValidationErrors []ValidationError

	cause error
	stack string
}

// Error 实现 error 接口，返回拼接后的消息。
func (e *Info) Error() string {
	return e.Message()
}

// Message 返回拼接后的消息。
func (e *Info) Message() string {
	return strings.Join(e.Messages, messageSeparator)
}

// Detail 返回用于日志的错误描述。
// 存在底层原因时使用原因文本，否则与 Message 相同。
func (e *Info) Detail() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.Message()
}

// Unwrap 返回底层原因。
func (e *Info) Unwrap() error { return e.cause }

// Stack 返回抛出处的调用栈。
func (e *Info) Stack() string { return e.stack }

// IsValidation 是否为校验错误。
func (e *Info) IsValidation() bool { return e.Kind == KindValidation }

// WithCause 返回附带底层原因的副本。
func (e *Info) WithCause(cause error) *Info {
	c := e.clone()
	c.cause = cause
	return c
}

// WithStack 返回替换调用栈的副本。
// 用于 panic 恢复等调用栈来自别处的场景。
func (e *Info) WithStack(stack string) *Info {
	c := e.clone()
	c.stack = stack
	return c
}

func (e *Info) clone() *Info {
	c := *e
	c.Messages = slices.Clone(e.Messages)
	c.ValidationErrors = slices.Clone(e.ValidationErrors)
	return &c
}

// =============================================================================
// 通用构造函数
// =============================================================================

// Simple 构造 Simple 形态的错误。
func Simple(status int, messages ...string) *Info {
	return &Info{
		Status:   status,
		Messages: slices.Clone(messages),
		Kind:     KindSimple,
		stack:    callers(3),
	}
}

// Validation 构造 Validation 形态的错误。
func Validation(status int, summary string, errs []ValidationError) *Info {
	return &Info{
		Status:           status,
		Messages:         []string{summary},
		Kind:             KindValidation,
		ValidationErrors: slices.Clone(errs),
		stack:            callers(3),
	}
}

// Wrap 为 info 附加底层原因。info 为 nil 时按未知错误处理。
func Wrap(cause error, info *Info) *Info {
	if info == nil {
		return newInternal(cause, 3)
	}
	return info.WithCause(cause)
}

// From 将任意错误归一化为 *Info。
//
// 错误链上存在 *Info 时直接返回它；其余错误一律视为 500 未知错误，
// 原错误保留为底层原因。err 为 nil 时返回 nil。
func From(err error) *Info {
	if err == nil {
		return nil
	}
	var info *Info
	if errors.As(err, &info) && info != nil {
		return info
	}
	return newInternal(err, 3)
}

// StatusOf 返回错误对应的状态码；nil 返回 0。
func StatusOf(err error) int {
	if info := From(err); info != nil {
		return info.Status
	}
	return 0
}

// Is 判断 err 归一化后的状态码是否为 status。
func Is(err error, status int) bool {
	return err != nil && StatusOf(err) == status
}
