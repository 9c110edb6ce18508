package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/omeyang/xapikit/internal/app"
	"github.com/omeyang/xapikit/pkg/observability/xlog"
	"github.com/omeyang/xapikit/pkg/observability/xmetrics"
)

func testConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.Auth.AccessTokenSecret = "test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Log.Dir = ""
	cfg.Log.Level = "error"
	return cfg
}

func newServer(t *testing.T, cfg app.Config, opts ...app.Option) *app.Server {
	t.Helper()
	opts = append([]app.Option{app.WithObserver(xmetrics.NoopObserver{})}, opts...)
	srv, err := app.New(cfg, nil, io.Discard, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = srv.Close()
		xlog.ResetDefault()
	})
	return srv
}

type response struct {
	Code   int
	Header http.Header
	Raw    string
	Body   map[string]any
}

func do(t *testing.T, h http.Handler, method, path, body, token string) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Header: rec.Header(), Raw: rec.Body.String()}
	if json.Valid(rec.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.Body))
	}
	return out
}

func errorCodes(t *testing.T, body map[string]any) map[string]string {
	t.Helper()
	raw, ok := body["errors"].([]any)
	require.True(t, ok, "errors missing: %v", body)
	out := make(map[string]string, len(raw))
	for _, e := range raw {
		m := e.(map[string]any)
		out[m["field"].(string)] = m["code"].(string)
	}
	return out
}
