//go:build e2e

package e2e

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/omeyang/xapikit/internal/app"
	"github.com/omeyang/xapikit/pkg/context/xctx"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
)

// syncBuffer 并发安全的日志缓冲区。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// records 解析所有 JSON 日志行。
func (b *syncBuffer) records(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(strings.NewReader(b.String()))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

// find 返回 msg 与 request_id 都匹配的日志行。
func (b *syncBuffer) find(t *testing.T, msg, requestID string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, rec := range b.records(t) {
		if rec["msg"] == msg && rec[xlog.KeyRequestID] == requestID {
			out = append(out, rec)
		}
	}
	return out
}

type env struct {
	server *httptest.Server
	logs   *syncBuffer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.Auth.AccessTokenSecret = "e2e-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Log.Dir = ""
	cfg.Log.Format = "json"

	logs := &syncBuffer{}
	srv, err := app.New(cfg, nil, logs, app.WithObserver(xmetrics.NoopObserver{}))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
		xlog.ResetDefault()
	})
	return &env{server: ts, logs: logs}
}

type result struct {
	Status    int
	RequestID string
	Body      map[string]any
}

func (e *env) call(t *testing.T, method, path, body, token string) result {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := result{Status: resp.StatusCode, RequestID: resp.Header.Get(xctx.HeaderRequestID)}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out.Body))
	return out
}

func data(t *testing.T, r result) map[string]any {
	t.Helper()
	d, ok := r.Body["data"].(map[string]any)
	require.True(t, ok, "data missing: %v", r.Body)
	return d
}
