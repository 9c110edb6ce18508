package xlog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

func TestLazy_NotEvaluatedWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(t, &buf, xlog.LevelInfo)
	called := false

	logger.Debug(context.Background(), "skip",
		xlog.Lazy("v", func() any { called = true; return 1 }),
		xlog.LazyString("s", func() string { called = true; return "" }),
		xlog.LazyGroup("g", func() []slog.Attr { called = true; return nil }),
	)

	if called {
		t.Error("lazy value evaluated for a disabled level")
	}
}

func TestLazy_EvaluatedWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(t, &buf, xlog.LevelInfo)

	logger.Info(context.Background(), "emit",
		xlog.Lazy("v", func() any { return 7 }),
		xlog.LazyString("s", func() string { return "str" }),
		xlog.LazyErr(func() error { return errors.New("bad") }),
		xlog.LazyGroup("g", func() []slog.Attr { return []slog.Attr{slog.Int("n", 1)} }),
	)

	r := decodeLines(t, buf.Bytes())[0]
	if r["v"] != float64(7) || r["s"] != "str" || r[xlog.KeyError] != "bad" {
		t.Errorf("lazy values not rendered: %v", r)
	}
	g, ok := r["g"].(map[string]any)
	if !ok || g["n"] != float64(1) {
		t.Errorf("lazy group not rendered: %v", r["g"])
	}
}

func TestAttrs_Helpers(t *testing.T) {
	if a := xlog.Err(nil); !a.Equal(slog.Attr{}) {
		t.Errorf("Err(nil) = %v, want empty attr", a)
	}
	if a := xlog.DurationMS(-5); a.Value.Int64() != 0 {
		t.Errorf("DurationMS(-5) = %v, want 0", a.Value)
	}
	a := xlog.Redacted("body", map[string]any{"password": "x", "name": "n"})
	var buf bytes.Buffer
	logger := newJSONLogger(t, &buf, xlog.LevelInfo)
	logger.Info(context.Background(), "r", a)
	if bytes.Contains(buf.Bytes(), []byte(`"x"`)) {
		t.Errorf("password leaked: %s", buf.String())
	}
}
