package xvalidate

import "regexp"

// Type 属性的 JSON 类型。空值表示不限制类型。
type Type string

// 支持的类型。
const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Rule 单个属性的约束描述。
//
// 零值表示不做任何约束。通过 [String]、[Number] 等辅助函数链式构建：
//
//	xvalidate.String().Email().MinLen(3).MaxLen(50)
//
// Rule 是值类型，每个链式方法返回修改后的副本。
type Rule struct {
	Type      Type
	Format    string
	MinLength *int
	MaxLength *int
	Minimum   *float64
	Maximum   *float64
	Pattern   string
	Enum      []any

	pattern *regexp.Regexp
}

// String 字符串规则。
func String() Rule { return Rule{Type: TypeString} }

// Number 数值规则。
func Number() Rule { return Rule{Type: TypeNumber} }

// Integer 整数规则。
func Integer() Rule { return Rule{Type: TypeInteger} }

// Boolean 布尔规则。
func Boolean() Rule { return Rule{Type: TypeBoolean} }

// Any 不限制类型的规则。
func Any() Rule { return Rule{} }

// WithFormat 设置 format，支持的取值见 [Formats]。
func (r Rule) WithFormat(format string) Rule {
	r.Format = format
	return r
}

// Email 等价于 WithFormat("email")。
func (r Rule) Email() Rule { return r.WithFormat(FormatEmail) }

// MinLen 设置最小长度（按 rune 计）。
func (r Rule) MinLen(n int) Rule {
	r.MinLength = &n
	return r
}

// MaxLen 设置最大长度（按 rune 计）。
func (r Rule) MaxLen(n int) Rule {
	r.MaxLength = &n
	return r
}

// Min 设置数值下界（含）。
func (r Rule) Min(v float64) Rule {
	r.Minimum = &v
	return r
}

// Max 设置数值上界（含）。
func (r Rule) Max(v float64) Rule {
	r.Maximum = &v
	return r
}

// Match 设置正则约束，在 Build 时编译。
func (r Rule) Match(pattern string) Rule {
	r.Pattern = pattern
	return r
}

// OneOf 设置枚举约束。不带参数时任何值都不满足约束。
func (r Rule) OneOf(values ...any) Rule {
	r.Enum = append(make([]any, 0, len(values)), values...)
	return r
}

// compile 校验规则自身并编译 pattern。
func (r Rule) compile() (Rule, error) {
	if r.Format != "" && lookupFormat(r.Format) == nil {
		return r, ErrUnknownFormat
	}
	if (r.MinLength != nil && *r.MinLength < 0) || (r.MaxLength != nil && *r.MaxLength < 0) {
		return r, ErrInvalidBounds
	}
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		return r, ErrInvalidBounds
	}
	if r.Minimum != nil && r.Maximum != nil && *r.Minimum > *r.Maximum {
		return r, ErrInvalidBounds
	}
	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return r, ErrInvalidPattern
		}
		r.pattern = re
	}
	return r, nil
}
