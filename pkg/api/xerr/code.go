package xerr

// Code 字段级校验错误码。
type Code string

// 校验错误码。取值固定，客户端可据此做本地化。
const (
	CodeRequired        Code = "REQUIRED"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidEmail    Code = "INVALID_EMAIL"
	CodeMinLength       Code = "MIN_LENGTH"
	CodeMaxLength       Code = "MAX_LENGTH"
	CodeMinValue        Code = "MIN_VALUE"
	CodeMaxValue        Code = "MAX_VALUE"
	CodePatternMismatch Code = "PATTERN_MISMATCH"
	CodeUnexpectedField Code = "UNEXPECTED_FIELD"
	CodeInvalidEnum     Code = "INVALID_ENUM"
	CodeInvalidValue    Code = "INVALID_VALUE"
)

// String 实现 fmt.Stringer。
func (c Code) String() string { return string(c) }

// ValidationError 单个字段的校验失败描述。
//
// 仅由校验引擎产生，按值传递，创建后不再修改。
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    Code   `json:"code"`
}
