package xredact

import (
	"slices"
	"strings"
)

// Marker 替换敏感值的固定标记。
const Marker = "[REDACTED]"

// DefaultDenyList 默认拒绝名单。
// 键名（忽略大小写）包含其中任一子串即视为敏感。
var DefaultDenyList = []string{"password", "token", "authorization", "jwt", "secret", "key"}

// Redactor 基于子串拒绝名单的脱敏器。
//
// 构造后不可变，可被任意多个 goroutine 并发使用。
type Redactor struct {
	terms []string
}

// New 使用给定的拒绝名单创建 Redactor。
// 不传参时使用 DefaultDenyList。名单项统一转为小写，空串被忽略。
func New(terms ...string) *Redactor {
	if len(terms) == 0 {
		terms = DefaultDenyList
	}
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(normalized, t) {
			continue
		}
		normalized = append(normalized, t)
	}
	return &Redactor{terms: normalized}
}

// Terms 返回拒绝名单的拷贝。
func (r *Redactor) Terms() []string {
	return slices.Clone(r.terms)
}

// IsSensitiveKey 判断键名是否命中拒绝名单。
func (r *Redactor) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, t := range r.terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Redact 递归脱敏。
//
// 映射中命中名单的键，值整体替换为 Marker（无论原值是什么变体）；
// 其余键的值递归处理。序列逐元素处理。空值与标量原样返回。
// 结果与输入结构一致：键集合、顺序、序列长度都不变。
func (r *Redactor) Redact(v Value) Value {
	switch v.kind {
	case KindSequence:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = r.Redact(item)
		}
		return Value{kind: KindSequence, items: items}
	case KindMapping:
		entries := make([]Entry, len(v.entries))
		for i, e := range v.entries {
			if r.IsSensitiveKey(e.Key) {
				entries[i] = Entry{Key: e.Key, Value: Scalar(Marker)}
				continue
			}
			entries[i] = Entry{Key: e.Key, Value: r.Redact(e.Value)}
		}
		return Value{kind: KindMapping, entries: entries}
	default:
		return v
	}
}

// RedactAny 先 FromAny 再 Redact。
func (r *Redactor) RedactAny(v any) Value {
	return r.Redact(FromAny(v))
}

// =============================================================================
// 包级便利函数（使用默认拒绝名单）
// =============================================================================

var defaultRedactor = New()

// Default 返回使用 DefaultDenyList 的共享 Redactor。
func Default() *Redactor { return defaultRedactor }

// IsSensitiveKey 使用默认名单判断键名。
func IsSensitiveKey(key string) bool { return defaultRedactor.IsSensitiveKey(key) }

// Redact 使用默认名单脱敏。
func Redact(v Value) Value { return defaultRedactor.Redact(v) }

// RedactAny 使用默认名单脱敏任意 JSON-like 值。
func RedactAny(v any) Value { return defaultRedactor.RedactAny(v) }
