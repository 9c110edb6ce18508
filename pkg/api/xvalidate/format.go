package xvalidate

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// 内置 format 名称。
const (
	FormatEmail    = "email"
	FormatURI      = "uri"
	FormatUUID     = "uuid"
	FormatDate     = "date"
	FormatDateTime = "date-time"
	FormatIPv4     = "ipv4"
	FormatIPv6     = "ipv6"
)

// tagValidator 执行单值 tag 校验，Var 可并发调用。
var tagValidator = validator.New()

type formatFunc func(string) bool

var formats = map[string]formatFunc{
	FormatEmail:    byTag("email"),
	FormatURI:      byTag("uri"),
	FormatUUID:     isUUID,
	FormatDate:     byTag("datetime=" + time.DateOnly),
	FormatDateTime: byTag("datetime=" + time.RFC3339),
	FormatIPv4:     byTag("ipv4"),
	FormatIPv6:     byTag("ipv6"),
}

func lookupFormat(name string) formatFunc { return formats[name] }

// Formats 返回支持的 format 名称（已排序）。
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// byTag 以 validator tag 实现 format 检查。tag 为固定常量，不会触发未注册 tag 的 panic。
func byTag(tag string) formatFunc {
	return func(s string) bool {
		return tagValidator.Var(s, tag) == nil
	}
}

// isUUID 只接受 8-4-4-4-12 标准形式，拒绝 urn 与花括号形式。
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
