package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xapikit/internal/app"
	"github.com/omeyang/xapikit/internal/users"
	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/api/xhttp"
	"github.com/omeyang/xapikit/pkg/context/xctx"
)

func TestRouter_Welcome(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	resp := do(t, h, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, app.WelcomeMessage, resp.Body["message"])

	resp = do(t, h, http.MethodGet, "/api", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Raw)
}

func TestRouter_Register(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	resp := do(t, h, http.MethodPost, "/api/auth/register",
		`{"email":"Alice@Example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw)
	assert.Equal(t, true, resp.Body["success"])
	assert.Equal(t, users.MsgRegistered, resp.Body["message"])
	assert.NotEmpty(t, resp.Header.Get(xctx.HeaderRequestID))

	data := resp.Body["data"].(map[string]any)
	assert.Equal(t, "alice@example.com", data["email"])
	assert.NotEmpty(t, data["id"])
	assert.NotContains(t, data, "password")

	resp = do(t, h, http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"secret2"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, false, resp.Body["success"])
	assert.Equal(t, "User already exists", resp.Body["message"])
	assert.Equal(t, resp.Header.Get(xctx.HeaderRequestID), resp.Body["requestId"])
}

func TestRouter_RegisterValidation(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	tests := []struct {
		name  string
		body  string
		codes map[string]string
	}{
		{
			name: "empty body",
			body: "",
			codes: map[string]string{
				"email":    string(xerr.CodeRequired),
				"password": string(xerr.CodeRequired),
			},
		},
		{
			name: "bad email and short password",
			body: `{"email":"nope","password":"123"}`,
			codes: map[string]string{
				"email":    string(xerr.CodeInvalidEmail),
				"password": string(xerr.CodeMinLength),
			},
		},
		{
			name: "unexpected field",
			body: `{"email":"bob@example.com","password":"secret1","role":"admin"}`,
			codes: map[string]string{
				"role": string(xerr.CodeUnexpectedField),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, http.MethodPost, "/api/auth/register", tt.body, "")
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Raw)
			assert.Equal(t, xerr.MsgValidationFailed, resp.Body["message"])
			assert.Equal(t, tt.codes, errorCodes(t, resp.Body))
		})
	}
}

func TestRouter_InvalidJSON(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	resp := do(t, h, http.MethodPost, "/api/auth/login", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, xhttp.MsgInvalidJSON, resp.Body["message"])
}

func TestRouter_LoginAndMe(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	resp := do(t, h, http.MethodPost, "/api/auth/register",
		`{"email":"carol@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw)
	userID := resp.Body["data"].(map[string]any)["id"]

	resp = do(t, h, http.MethodPost, "/api/auth/login",
		`{"email":"carol@example.com","password":"wrong-pass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, xerr.MsgInvalidCredentials, resp.Body["message"])

	resp = do(t, h, http.MethodPost, "/api/auth/login",
		`{"email":"carol@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, users.MsgLoggedIn, resp.Body["message"])
	data := resp.Body["data"].(map[string]any)
	assert.Equal(t, userID, data["id"])
	token, _ := data["accessToken"].(string)
	require.NotEmpty(t, token)

	resp = do(t, h, http.MethodGet, "/api/user/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, xerr.MsgMissingAuthToken, resp.Body["message"])

	resp = do(t, h, http.MethodGet, "/api/user/me", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, xerr.MsgInvalidToken, resp.Body["message"])

	resp = do(t, h, http.MethodGet, "/api/user/me", "", token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, users.MsgMe, resp.Body["message"])
	assert.Equal(t, "carol@example.com", resp.Body["data"].(map[string]any)["email"])
}

func TestRouter_ListUsers(t *testing.T) {
	srv := newServer(t, testConfig())
	n, err := srv.Users().Seed(context.Background(), users.SeedUsers())
	require.NoError(t, err)
	require.Equal(t, 5, n)

	resp := do(t, srv.Handler(), http.MethodGet, "/api/user?page=2&limit=2", "", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, users.MsgListed, resp.Body["message"])

	page := resp.Body["data"].(map[string]any)
	assert.Len(t, page["data"], 2)
	assert.Equal(t, map[string]any{
		"page":       float64(2),
		"limit":      float64(2),
		"total":      float64(5),
		"totalPages": float64(3),
		"hasNext":    true,
		"hasPrev":    true,
	}, page["pagination"])

	resp = do(t, srv.Handler(), http.MethodGet, "/api/user?page=abc&limit=1000", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	pagination := resp.Body["data"].(map[string]any)["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(100), pagination["limit"])
}

func TestRouter_NotFound(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/nope"},
		{http.MethodDelete, "/api/auth/login"},
	} {
		resp := do(t, h, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusNotFound, resp.Code, tc.path)
		assert.Equal(t, xerr.MsgAPIPathNotFound, resp.Body["message"], tc.path)
		assert.NotEmpty(t, resp.Body["requestId"], tc.path)
	}
}

func TestRouter_DebugStack(t *testing.T) {
	cfg := testConfig()
	cfg.Debug = true
	h := newServer(t, cfg).Handler()

	resp := do(t, h, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotEmpty(t, resp.Body["errorStack"])

	h = newServer(t, testConfig()).Handler()
	resp = do(t, h, http.MethodGet, "/api/nope", "", "")
	assert.NotContains(t, resp.Body, "errorStack")
}

func TestRouter_CORS(t *testing.T) {
	h := newServer(t, testConfig()).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_BadTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"not-a-cidr"}
	_, err := app.NewRouter(app.RouterDeps{Config: cfg})
	assert.Error(t, err)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = app.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute}
	h := newServer(t, cfg).Handler()

	body := `{"email":"nobody@example.com","password":"secret1"}`
	for range 2 {
		resp := do(t, h, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
	}

	resp := do(t, h, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, xerr.MsgTooManyRequests, resp.Body["message"])
	assert.NotEmpty(t, resp.Body["requestId"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// 其他接口不受影响
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/user/", "", "").Code)
}
