package xvalidate

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/omeyang/xapikit/pkg/api/xerr"
)

// 只提供部分必填字段时，缺失的每个字段恰好报告一次 REQUIRED，顺序与声明一致。
func TestValidate_MissingRequiredProperty(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	s := Object().Require(names...).MustBuild()

	rapid.Check(t, func(t *rapid.T) {
		present := rapid.SliceOfDistinct(rapid.SampledFrom(names), rapid.ID[string]).Draw(t, "present")
		if len(present) == 0 {
			return
		}
		in := make(map[string]any, len(present))
		for _, n := range present {
			in[n] = rapid.Int().Draw(t, n)
		}

		var want []string
		for _, n := range names {
			if _, ok := in[n]; !ok {
				want = append(want, n)
			}
		}

		errs := Validate(s, in)
		if len(errs) != len(want) {
			t.Fatalf("got %d errors, want %d", len(errs), len(want))
		}
		for i, e := range errs {
			if e.Field != want[i] || e.Code != xerr.CodeRequired {
				t.Fatalf("error %d = %+v, want REQUIRED on %q", i, e, want[i])
			}
		}
	})
}

// 字符串长度约束的结果只取决于 rune 数。
func TestValidate_LengthBoundaryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		minLen := rapid.IntRange(0, 20).Draw(t, "min")
		value := rapid.StringN(0, 30, -1).Draw(t, "value")
		s := Object().Prop("v", String().MinLen(minLen)).MustBuild()

		errs := Validate(s, map[string]any{"v": value})
		short := len([]rune(value)) < minLen
		if short != (len(errs) == 1) {
			t.Fatalf("value %q min %d: errs=%v", value, minLen, errs)
		}
		if short && errs[0].Code != xerr.CodeMinLength {
			t.Fatalf("unexpected code %s", errs[0].Code)
		}
	})
}
