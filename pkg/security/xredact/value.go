package xredact

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"
	"sort"
	"strconv"
)

// =============================================================================
// Value 类型定义
// =============================================================================

// Kind 表示 Value 的变体类型。
type Kind uint8

const (
	// KindNull 空值。
	KindNull Kind = iota
	// KindScalar 标量（字符串、数字、布尔，或无法识别的不透明值）。
	KindScalar
	// KindSequence 有序序列。
	KindSequence
	// KindMapping 有序键值映射。
	KindMapping
)

// String 返回 Kind 的可读名称。
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Entry 映射中的一个键值对。
type Entry struct {
	Key   string
	Value Value
}

// Value 封闭的 JSON-like 值：null、标量、序列、映射四选一。
//
// 零值为 Null。Value 按值传递，构造后不可变；Redact 总是返回新值。
// 映射保留键的插入顺序，序列化和日志输出均按该顺序。
type Value struct {
	kind    Kind
	scalar  any
	items   []Value
	entries []Entry
}

// Null 返回空值。
func Null() Value { return Value{} }

// Scalar 包装一个标量。
// nil 会被视为 Null。
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

// Sequence 构造有序序列。
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: slices.Clone(items)}
}

// Mapping 构造有序映射。重复的键保留最后一次的值，位置取第一次出现处。
func Mapping(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i := indexOf(out, e.Key); i >= 0 {
			out[i].Value = e.Value
			continue
		}
		out = append(out, e)
	}
	return Value{kind: KindMapping, entries: out}
}

func indexOf(entries []Entry, key string) int {
	for i := range entries {
		if entries[i].Key == key {
			return i
		}
	}
	return -1
}

// =============================================================================
// 访问方法
// =============================================================================

// Kind 返回变体类型。
func (v Value) Kind() Kind { return v.kind }

// IsNull 是否为空值。
func (v Value) IsNull() bool { return v.kind == KindNull }

// Len 序列长度或映射键数量；其他变体返回 0。
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.entries)
	default:
		return 0
	}
}

// Items 返回序列元素的拷贝。
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return slices.Clone(v.items)
}

// Entries 返回映射键值对的拷贝。
func (v Value) Entries() []Entry {
	if v.kind != KindMapping {
		return nil
	}
	return slices.Clone(v.entries)
}

// Get 按键读取映射中的值。
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	if i := indexOf(v.entries, key); i >= 0 {
		return v.entries[i].Value, true
	}
	return Value{}, false
}

// Scalar 返回标量的原始值；非标量返回 nil。
func (v Value) Scalar() any {
	if v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

// Interface 转换回普通 Go 值：nil、标量、[]any、map[string]any。
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal 深度比较两个 Value。映射比较包含键顺序。
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return scalarEqual(v.scalar, other.scalar)
	case KindSequence:
		return slices.EqualFunc(v.items, other.items, Value.Equal)
	case KindMapping:
		return slices.EqualFunc(v.entries, other.entries, func(a, b Entry) bool {
			return a.Key == b.Key && a.Value.Equal(b.Value)
		})
	default:
		return false
	}
}

// scalarEqual 比较标量。不可比较的不透明值退化为 JSON 表示比较。
func scalarEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			ja, errA := json.Marshal(a)
			jb, errB := json.Marshal(b)
			eq = errA == nil && errB == nil && bytes.Equal(ja, jb)
		}
	}()
	return a == b
}

// =============================================================================
// 序列化
// =============================================================================

// MarshalJSON 按映射插入顺序输出 JSON。
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindScalar:
		data, err := json.Marshal(v.scalar)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return nil
}

// LogValue 实现 slog.LogValuer。
// JSON handler 会通过 MarshalJSON 输出嵌套结构。
func (v Value) LogValue() slog.Value {
	if v.kind == KindScalar {
		return slog.AnyValue(v.scalar)
	}
	return slog.AnyValue(jsonValue{v})
}

// jsonValue 避免 slog 对 LogValuer 的重复解析。
type jsonValue struct{ v Value }

func (j jsonValue) MarshalJSON() ([]byte, error) { return j.v.MarshalJSON() }

func (j jsonValue) String() string {
	data, err := j.v.MarshalJSON()
	if err != nil {
		return "!ERROR:" + err.Error()
	}
	return string(data)
}

// =============================================================================
// 从 Go 值转换
// =============================================================================

// FromAny 将 JSON-like 的 Go 值转换为 Value。
//
// 识别的形态：nil、字符串、布尔、数值、json.Number、[]any、[]string、
// []map[string]any、map[string]any、map[string]string、map[string][]string。
// Go map 没有顺序，转换后的映射按键排序。
// 其余类型作为不透明标量原样保留。
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Scalar(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Value{kind: KindSequence, items: items}
	case []string:
		return stringSequence(t)
	case []map[string]any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Value{kind: KindSequence, items: items}
	case map[string]any:
		return sortedMapping(t, FromAny)
	case map[string]string:
		return sortedMapping(t, func(s string) Value { return Scalar(s) })
	case map[string][]string:
		return sortedMapping(t, stringSequence)
	default:
		return Scalar(v)
	}
}

func stringSequence(ss []string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = Scalar(s)
	}
	return Value{kind: KindSequence, items: items}
}

func sortedMapping[V any](m map[string]V, conv func(V) Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: conv(m[k])}
	}
	return Value{kind: KindMapping, entries: entries}
}
