package xvalidate

import "errors"

// =============================================================================
// 构建错误
// =============================================================================

var (
	// ErrUnknownFormat 规则引用了未注册的 format。
	ErrUnknownFormat = errors.New("xvalidate: unknown format")

	// ErrInvalidPattern pattern 无法编译为正则表达式。
	ErrInvalidPattern = errors.New("xvalidate: invalid pattern")

	// ErrEmptyName 属性名或必填字段名为空。
	ErrEmptyName = errors.New("xvalidate: empty property name")

	// ErrDuplicateProperty 同名属性重复声明。
	ErrDuplicateProperty = errors.New("xvalidate: duplicate property")

	// ErrInvalidBounds 长度或数值上下界非法（负数或下界大于上界）。
	ErrInvalidBounds = errors.New("xvalidate: invalid bounds")
)
