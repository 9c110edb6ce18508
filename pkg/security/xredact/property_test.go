package xredact

import (
	"testing"

	"pgregory.net/rapid"
)

var propertyKeys = []string{
	"email", "name", "id", "items", "meta", "note",
	"password", "Password", "accessToken", "API_KEY",
	"Authorization", "jwtClaims", "clientSecret",
}

// genValue 生成深度不超过 depth 的随机 Value。
func genValue(depth int) *rapid.Generator[Value] {
	return rapid.Custom(func(t *rapid.T) Value {
		maxKind := 1
		if depth > 0 {
			maxKind = 3
		}
		switch rapid.IntRange(0, maxKind).Draw(t, "kind") {
		case 0:
			return Null()
		case 1:
			return genScalar().Draw(t, "scalar")
		case 2:
			n := rapid.IntRange(0, 4).Draw(t, "len")
			items := make([]Value, n)
			for i := range items {
				items[i] = genValue(depth-1).Draw(t, "item")
			}
			return Sequence(items...)
		default:
			n := rapid.IntRange(0, 5).Draw(t, "size")
			entries := make([]Entry, n)
			for i := range entries {
				entries[i] = Entry{
					Key:   rapid.SampledFrom(propertyKeys).Draw(t, "key"),
					Value: genValue(depth-1).Draw(t, "value"),
				}
			}
			return Mapping(entries...)
		}
	})
}

func genScalar() *rapid.Generator[Value] {
	return rapid.OneOf(
		rapid.Map(rapid.String(), func(s string) Value { return Scalar(s) }),
		rapid.Map(rapid.Int(), func(n int) Value { return Scalar(n) }),
		rapid.Map(rapid.Bool(), func(b bool) Value { return Scalar(b) }),
	)
}

func TestRedact_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genValue(4).Draw(t, "v")
		once := Redact(v)
		twice := Redact(once)
		if !once.Equal(twice) {
			t.Fatalf("not idempotent:\nonce:  %s\ntwice: %s", once.LogValue(), twice.LogValue())
		}
	})
}

func TestRedact_CoverageAtAnyDepth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genValue(4).Draw(t, "v")
		checkCoverage(t, v, Redact(v))
	})
}

// checkCoverage 同时检查覆盖与保结构：
// 命中键的值为 Marker，其余键与原值结构一致。
func checkCoverage(t *rapid.T, in, out Value) {
	if in.Kind() != out.Kind() {
		t.Fatalf("kind changed: %s -> %s", in.Kind(), out.Kind())
	}
	switch in.Kind() {
	case KindSequence:
		if in.Len() != out.Len() {
			t.Fatalf("sequence length changed: %d -> %d", in.Len(), out.Len())
		}
		outItems := out.Items()
		for i, item := range in.Items() {
			checkCoverage(t, item, outItems[i])
		}
	case KindMapping:
		if in.Len() != out.Len() {
			t.Fatalf("mapping size changed: %d -> %d", in.Len(), out.Len())
		}
		outEntries := out.Entries()
		for i, e := range in.Entries() {
			got := outEntries[i]
			if got.Key != e.Key {
				t.Fatalf("key order changed at %d: %q -> %q", i, e.Key, got.Key)
			}
			if IsSensitiveKey(e.Key) {
				if got.Value.Kind() != KindScalar || got.Value.Scalar() != Marker {
					t.Fatalf("key %q not redacted", e.Key)
				}
				continue
			}
			checkCoverage(t, e.Value, got.Value)
		}
	default:
		if !in.Equal(out) {
			t.Fatalf("leaf changed outside sensitive key")
		}
	}
}
