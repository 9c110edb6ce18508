package xvalidate

import (
	"fmt"
	"slices"
)

// Property 具名属性约束。
type Property struct {
	Name string
	Rule Rule
}

// Schema 对象输入的声明式约束。
//
// Schema 由 [Builder] 构建，构建后只读，可被多个请求并发使用。
type Schema struct {
	// Required 必填字段，按声明顺序报告缺失。
	Required []string
	// Properties 属性约束，按声明顺序校验。
	Properties []Property
	// DisallowAdditional 为 true 时拒绝未声明的字段。
	DisallowAdditional bool

	declared map[string]struct{}
}

// isDeclared 判断属性是否已声明。
// 直接以字面量构造的 Schema 没有索引，退化为线性查找。
func (s *Schema) isDeclared(name string) bool {
	if s.declared != nil {
		_, ok := s.declared[name]
		return ok
	}
	return slices.ContainsFunc(s.Properties, func(p Property) bool { return p.Name == name })
}

// =============================================================================
// Builder
// =============================================================================

// Builder 以链式调用构建 [Schema]。
//
// 第一次出错后后续调用被忽略，错误在 Build 时返回。
type Builder struct {
	schema Schema
	err    error
}

// Object 开始构建对象 Schema。
func Object() *Builder {
	return &Builder{schema: Schema{declared: make(map[string]struct{})}}
}

// Require 追加必填字段。
func (b *Builder) Require(names ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, name := range names {
		if name == "" {
			b.err = ErrEmptyName
			return b
		}
		if !slices.Contains(b.schema.Required, name) {
			b.schema.Required = append(b.schema.Required, name)
		}
	}
	return b
}

// Prop 声明属性约束。
func (b *Builder) Prop(name string, rule Rule) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = ErrEmptyName
		return b
	}
	if b.schema.isDeclared(name) {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateProperty, name)
		return b
	}
	compiled, err := rule.compile()
	if err != nil {
		b.err = fmt.Errorf("%w: property %q", err, name)
		return b
	}
	b.schema.declared[name] = struct{}{}
	b.schema.Properties = append(b.schema.Properties, Property{Name: name, Rule: compiled})
	return b
}

// Strict 拒绝未声明的字段。
func (b *Builder) Strict() *Builder {
	b.schema.DisallowAdditional = true
	return b
}

// Build 返回构建结果。
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := b.schema
	s.Required = slices.Clone(b.schema.Required)
	s.Properties = slices.Clone(b.schema.Properties)
	return &s, nil
}

// MustBuild 同 Build，出错时 panic。仅用于包级 Schema 变量初始化。
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
