package xerr

import "net/http"

// =============================================================================
// 预置错误
// =============================================================================

// 预置错误的固定消息。
const (
	MsgValidationFailed   = "Validation failed"
	MsgInvalidCredentials = "Invalid credentials"
	MsgMissingAuthToken   = "Missing authorization token"
	MsgInvalidToken       = "Invalid or expired token"
	MsgAPIPathNotFound    = "API path not found"
	MsgTooManyRequests    = "Too many requests"
	MsgInternal           = "Internal Server Error"
)

// StructuredValidation 字段级校验失败，400。
func StructuredValidation(errs []ValidationError) *Info {
	return &Info{
		Status:           http.StatusBadRequest,
		Messages:         []string{MsgValidationFailed},
		Kind:             KindValidation,
		ValidationErrors: append([]ValidationError(nil), errs...),
		stack:            callers(3),
	}
}

// NotFound "<entity> not found"，400。
//
// 状态码沿用既有客户端约定，不是 404。
func NotFound(entity string) *Info {
	return preset(http.StatusBadRequest, entity+" not found")
}

// AlreadyExists "<entity> already exists"，400。
func AlreadyExists(entity string) *Info {
	return preset(http.StatusBadRequest, entity+" already exists")
}

// InvalidCredentials 登录凭证错误，401。
func InvalidCredentials() *Info {
	return preset(http.StatusUnauthorized, MsgInvalidCredentials)
}

// MissingAuthToken 缺少认证令牌，401。
func MissingAuthToken() *Info {
	return preset(http.StatusUnauthorized, MsgMissingAuthToken)
}

// InvalidToken 令牌无效或过期，401。
func InvalidToken() *Info {
	return preset(http.StatusUnauthorized, MsgInvalidToken)
}

// APIPathNotFound 未匹配任何路由，404。
func APIPathNotFound() *Info {
	return preset(http.StatusNotFound, MsgAPIPathNotFound)
}

// TooManyRequests 请求过于频繁，429。
func TooManyRequests() *Info {
	return preset(http.StatusTooManyRequests, MsgTooManyRequests)
}

// Internal 未知错误，500。cause 保留为底层原因，仅用于日志。
func Internal(cause error) *Info {
	return newInternal(cause, 3)
}

func newInternal(cause error, skip int) *Info {
	return &Info{
		Status:   http.StatusInternalServerError,
		Messages: []string{MsgInternal},
		Kind:     KindSimple,
		cause:    cause,
		stack:    callers(skip + 1),
	}
}

// preset 供预置构造函数使用，栈从预置函数的调用方开始。
func preset(status int, msg string) *Info {
	return &Info{
		Status:   status,
		Messages: []string{msg},
		Kind:     KindSimple,
		stack:    callers(4),
	}
}
