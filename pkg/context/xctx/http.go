package xctx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/omeyang/xapikit/pkg/util/xnet"
)

// HeaderRequestID 携带请求 ID 的响应头。
const HeaderRequestID = "X-Request-ID"

// DefaultMaxBodyBytes 请求体快照的默认上限（1 MiB）。
const DefaultMaxBodyBytes int64 = 1 << 20

// HTTPOption 配置 HTTPMiddleware。
type HTTPOption func(*httpOptions)

type httpOptions struct {
	maxBodyBytes int64
	proxies      *xnet.ProxySet
}

// WithMaxBodyBytes 设置请求体快照上限。超出上限的请求体不做快照，但仍完整传给下游。
// n <= 0 时忽略。
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(o *httpOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithTrustedProxies 设置受信任代理，用于解析客户端地址。
func WithTrustedProxies(p *xnet.ProxySet) HTTPOption {
	return func(o *httpOptions) {
		o.proxies = p
	}
}

// HTTPMiddleware 为每个请求绑定 RequestContext。
//
// 在调用下游之前写入 X-Request-ID 响应头，下游失败时响应中也带有该头。
// JSON 请求体被读取、快照并原样恢复，下游可以再次读取。
func HTTPMiddleware(opts ...HTTPOption) func(http.Handler) http.Handler {
	o := httpOptions{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := snapshotBody(r, o.maxBodyBytes)

			ctx, rc, err := Bind(r.Context(), RequestMeta{
				Method:    r.Method,
				URL:       r.URL.RequestURI(),
				IP:        o.proxies.ClientIP(r),
				UserAgent: r.UserAgent(),
				Query:     r.URL.Query(),
				Headers:   r.Header,
				Body:      body,
			})
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderRequestID, rc.RequestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// snapshotBody 读取并解析 JSON 请求体，然后恢复 r.Body。
// 非 JSON、空、超限或无法解析的请求体返回 nil。
func snapshotBody(r *http.Request, limit int64) any {
	if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
		return nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil || len(buf) == 0 || int64(len(buf)) > limit {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

type readCloser struct {
	io.Reader
	io.Closer
}
