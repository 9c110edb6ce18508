package xlog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/omeyang/xapikit/pkg/observability/xlog"
)

func useGlobal(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	logger, cleanup, err := xlog.New().SetOutput(buf).SetFormat("json").SetLevel(xlog.LevelDebug).SetAddSource(true).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)
	xlog.SetDefault(logger)
	t.Cleanup(xlog.ResetDefault)
}

func TestGlobal_Functions(t *testing.T) {
	var buf bytes.Buffer
	useGlobal(t, &buf)
	ctx := context.Background()

	xlog.Debug(ctx, "g-debug")
	xlog.Info(ctx, "g-info")
	xlog.Warn(ctx, "g-warn")
	xlog.Error(ctx, "g-error")
	xlog.Log(ctx, xlog.LevelInfo, "g-log")
	xlog.Stack(ctx, "g-stack")

	records := decodeLines(t, buf.Bytes())
	if len(records) != 6 {
		t.Fatalf("got %d records, want 6", len(records))
	}
	for _, r := range records {
		src, _ := r["source"].(map[string]any)
		if file, _ := src["file"].(string); !strings.HasSuffix(file, "global_test.go") {
			t.Errorf("%v: source.file = %q, want global_test.go", r["msg"], file)
		}
	}
	if _, ok := records[5][xlog.KeyStack]; !ok {
		t.Error("Stack record has no stack attribute")
	}
}

func TestGlobal_SetDefaultIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	useGlobal(t, &buf)
	before := xlog.Default()

	xlog.SetDefault(nil)

	if xlog.Default() != before {
		t.Error("SetDefault(nil) replaced the global logger")
	}
}

func TestGlobal_LazyDefault(t *testing.T) {
	xlog.ResetDefault()
	t.Cleanup(xlog.ResetDefault)

	if xlog.Default() == nil {
		t.Fatal("Default() = nil")
	}
	if xlog.Default() != xlog.Default() {
		t.Error("Default() not stable across calls")
	}
}

func TestGlobal_FallbackWhenBuildFails(t *testing.T) {
	xlog.ResetDefault()
	restore := xlog.SetNewBuilderForTest(func() *xlog.Builder {
		return xlog.New().SetFormat("invalid")
	})
	t.Cleanup(func() {
		restore()
		xlog.ResetDefault()
	})

	l := xlog.Default()
	if l == nil {
		t.Fatal("Default() = nil after build failure")
	}
	if got := l.GetLevel(); got != xlog.LevelInfo {
		t.Errorf("fallback level = %v, want INFO", got)
	}
}
