package xvalidate

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/omeyang/xapikit/pkg/api/xerr"
)

// 固定的错误消息。
const (
	msgRequired     = "This field is required"
	msgInvalidValue = "Invalid value"
	msgInvalidFmt   = "Invalid format"
	msgInvalidEmail = "Must be a valid email address"
	msgUnexpected   = "Unexpected field"
)

// Validate 按 schema 校验 input，返回全部违规项；空切片表示通过。
//
// 输入为空且 schema 声明了必填字段时，只返回每个必填字段的 REQUIRED 错误。
// 否则依次检查：必填、未声明字段（按键名排序）、各已声明属性
// （type、format、minLength、maxLength、minimum、maximum、pattern、enum）。
// 类型不符时跳过该属性的其余约束。
func Validate(schema *Schema, input map[string]any) []xerr.ValidationError {
	if schema == nil {
		return nil
	}

	if len(input) == 0 && len(schema.Required) > 0 {
		errs := make([]xerr.ValidationError, 0, len(schema.Required))
		for _, name := range schema.Required {
			errs = append(errs, required(name))
		}
		return errs
	}

	var errs []xerr.ValidationError

	for _, name := range schema.Required {
		if _, ok := input[name]; !ok {
			errs = append(errs, required(name))
		}
	}

	if schema.DisallowAdditional {
		var extra []string
		for key := range input {
			if !schema.isDeclared(key) {
				extra = append(extra, key)
			}
		}
		slices.Sort(extra)
		for _, key := range extra {
			errs = append(errs, xerr.ValidationError{Field: key, Message: msgUnexpected, Code: xerr.CodeUnexpectedField})
		}
	}

	for _, p := range schema.Properties {
		v, ok := input[p.Name]
		if !ok {
			continue
		}
		errs = p.Rule.check(p.Name, v, errs)
	}
	return errs
}

// ValidateValue 校验任意已解码的 JSON 值。
// nil 与空数组视为空请求体；其余非对象值报告根字段（空字段名）的 INVALID_VALUE。
func ValidateValue(schema *Schema, v any) []xerr.ValidationError {
	switch m := v.(type) {
	case nil:
		return Validate(schema, nil)
	case map[string]any:
		return Validate(schema, m)
	case []any:
		if len(m) == 0 {
			return Validate(schema, nil)
		}
		if schema == nil {
			return nil
		}
		return []xerr.ValidationError{{Field: "", Message: msgInvalidValue, Code: xerr.CodeInvalidValue}}
	default:
		if schema == nil {
			return nil
		}
		return []xerr.ValidationError{{Field: "", Message: msgInvalidValue, Code: xerr.CodeInvalidValue}}
	}
}

// Check 同 Validate，存在违规时返回 xerr.StructuredValidation。
func Check(schema *Schema, input map[string]any) error {
	if errs := Validate(schema, input); len(errs) > 0 {
		return xerr.StructuredValidation(errs)
	}
	return nil
}

func required(field string) xerr.ValidationError {
	return xerr.ValidationError{Field: field, Message: msgRequired, Code: xerr.CodeRequired}
}

// =============================================================================
// 单属性检查
// =============================================================================

func (r *Rule) check(field string, v any, errs []xerr.ValidationError) []xerr.ValidationError {
	add := func(code xerr.Code, msg string) {
		errs = append(errs, xerr.ValidationError{Field: field, Message: msg, Code: code})
	}

	if !r.typeMatches(v) {
		add(xerr.CodeInvalidValue, msgInvalidValue)
		return errs
	}

	if s, isStr := v.(string); isStr {
		if r.Format != "" {
			if fn := lookupFormat(r.Format); fn != nil && !fn(s) {
				if r.Format == FormatEmail {
					add(xerr.CodeInvalidEmail, msgInvalidEmail)
				} else {
					add(xerr.CodeInvalidFormat, msgInvalidFmt)
				}
			}
		}
		n := utf8.RuneCountInString(s)
		if r.MinLength != nil && n < *r.MinLength {
			add(xerr.CodeMinLength, fmt.Sprintf("Must be at least %d characters", *r.MinLength))
		}
		if r.MaxLength != nil && n > *r.MaxLength {
			add(xerr.CodeMaxLength, fmt.Sprintf("Must be no more than %d characters", *r.MaxLength))
		}
	}

	if f, isNum := toFloat(v); isNum {
		if r.Minimum != nil && f < *r.Minimum {
			add(xerr.CodeMinValue, "Must be at least "+formatNumber(*r.Minimum))
		}
		if r.Maximum != nil && f > *r.Maximum {
			add(xerr.CodeMaxValue, "Must be at most "+formatNumber(*r.Maximum))
		}
	}

	if s, isStr := v.(string); isStr && r.Pattern != "" {
		if re := r.pattern; re != nil && !re.MatchString(s) {
			add(xerr.CodePatternMismatch, msgInvalidFmt)
		}
	}

	if r.Enum != nil && !r.inEnum(v) {
		add(xerr.CodeInvalidEnum, enumMessage(r.Enum))
	}
	return errs
}

func (r *Rule) typeMatches(v any) bool {
	switch r.Type {
	case "":
		return true
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	default:
		return false
	}
}

func (r *Rule) inEnum(v any) bool {
	for _, allowed := range r.Enum {
		if equalJSON(allowed, v) {
			return true
		}
	}
	return false
}

func enumMessage(values []any) string {
	if len(values) == 0 {
		return msgInvalidValue
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "Must be one of: " + strings.Join(parts, ", ")
}

// equalJSON 比较两个标量：数值按数值比较，其余按值比较。
func equalJSON(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	defer func() { _ = recover() }()
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
