package xctx

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xapikit/pkg/security/xredact"
)

// RequestMeta 传输层提供的请求描述，由 [Bind] 复制进 [RequestContext]。
type RequestMeta struct {
	Method    string
	URL       string
	IP        string
	UserAgent string
	Query     map[string][]string
	Headers   map[string][]string
	Params    map[string]string
	// Body 已解析的请求体，绑定时先脱敏再保存。
	Body any
}

// Failure 终端处理器记录的错误详情。
type Failure struct {
	Message string
	Stack   string
}

// RequestContext 单个请求的关联上下文。
//
// 只存在于该请求的 context.Context 树中，不被其他请求共享。
// 请求 ID 等描述字段在 Bind 后只读；路由参数、请求体快照、用户 ID
// 和错误由下游各层补充，内部用互斥锁保护，外层中间件在请求结束时读取。
type RequestContext struct {
	RequestID string
	Method    string
	URL       string
	IP        string
	UserAgent string
	StartedAt time.Time
	Query     map[string][]string
	Headers   map[string][]string

	mu      sync.Mutex
	params  map[string]string
	body    xredact.Value
	userID  string
	failure *Failure
}

// Snapshot RequestContext 在某一时刻的只读副本，用于日志输出。
type Snapshot struct {
	RequestID string
	Method    string
	URL       string
	IP        string
	UserAgent string
	StartedAt time.Time
	Query     map[string][]string
	Headers   map[string][]string
	Params    map[string]string
	Body      xredact.Value
	UserID    string
	Failure   *Failure
}

// =============================================================================
// 绑定与读取
// =============================================================================

// Bind 为请求创建新的 RequestContext 并返回携带它的派生 context。
//
// 请求 ID 总是新生成的 UUID，不读取上游传入的值。
// meta 中的映射会被复制，请求体在保存前脱敏。
func Bind(ctx context.Context, meta RequestMeta) (context.Context, *RequestContext, error) {
	if ctx == nil {
		return nil, nil, ErrNilContext
	}
	rc := &RequestContext{
		RequestID: uuid.NewString(),
		Method:    meta.Method,
		URL:       meta.URL,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		StartedAt: time.Now(),
		Query:     cloneValues(meta.Query),
		Headers:   cloneValues(meta.Headers),
		params:    maps.Clone(meta.Params),
		body:      xredact.RedactAny(meta.Body),
	}
	return context.WithValue(ctx, keyRequest, rc), rc, nil
}

// Current 返回 ctx 上绑定的 RequestContext，未绑定或 ctx 为 nil 时返回 nil。
func Current(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(keyRequest).(*RequestContext)
	return rc
}

// RequestID 返回当前请求 ID，未绑定时返回空字符串。
func RequestID(ctx context.Context) string {
	if rc := Current(ctx); rc != nil {
		return rc.RequestID
	}
	return ""
}

// RequireRequestID 返回当前请求 ID，未绑定时返回 ErrMissingRequestID。
func RequireRequestID(ctx context.Context) (string, error) {
	if id := RequestID(ctx); id != "" {
		return id, nil
	}
	return "", ErrMissingRequestID
}

// UserID 返回当前请求的认证用户 ID，未绑定或未认证时返回空字符串。
func UserID(ctx context.Context) string {
	if rc := Current(ctx); rc != nil {
		return rc.UserID()
	}
	return ""
}

// SetUserID 为当前请求设置认证用户 ID。未绑定时返回 ErrNotBound。
func SetUserID(ctx context.Context, userID string) error {
	rc := Current(ctx)
	if rc == nil {
		return ErrNotBound
	}
	rc.SetUserID(userID)
	return nil
}

// RecordError 为当前请求记录错误。
// 未绑定时返回 ErrNotBound；每个请求只能记录一次，重复调用返回 ErrAlreadyRecorded。
func RecordError(ctx context.Context, message, stack string) error {
	rc := Current(ctx)
	if rc == nil {
		return ErrNotBound
	}
	return rc.RecordError(message, stack)
}

// =============================================================================
// RequestContext 方法
// =============================================================================

// RecordError 记录错误，重复调用返回 ErrAlreadyRecorded 且不覆盖首次记录。
func (rc *RequestContext) RecordError(message, stack string) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.failure != nil {
		return ErrAlreadyRecorded
	}
	rc.failure = &Failure{Message: message, Stack: stack}
	return nil
}

// Failure 返回已记录的错误，未记录时返回 nil。
func (rc *RequestContext) Failure() *Failure {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.failure == nil {
		return nil
	}
	f := *rc.failure
	return &f
}

// SetUserID 设置认证用户 ID。
func (rc *RequestContext) SetUserID(id string) {
	rc.mu.Lock()
	rc.userID = id
	rc.mu.Unlock()
}

// UserID 返回认证用户 ID。
func (rc *RequestContext) UserID() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.userID
}

// SetParams 合并路由参数。路由在中间件之后匹配，参数由处理器包装层补充。
func (rc *RequestContext) SetParams(params map[string]string) {
	if len(params) == 0 {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.params == nil {
		rc.params = make(map[string]string, len(params))
	}
	maps.Copy(rc.params, params)
}

// Params 返回路由参数副本。
func (rc *RequestContext) Params() map[string]string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return maps.Clone(rc.params)
}

// SetBody 替换请求体快照，保存前脱敏。
func (rc *RequestContext) SetBody(body any) {
	v := xredact.RedactAny(body)
	rc.mu.Lock()
	rc.body = v
	rc.mu.Unlock()
}

// Body 返回已脱敏的请求体快照。
func (rc *RequestContext) Body() xredact.Value {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.body
}

// Snapshot 返回当前状态的副本。
func (rc *RequestContext) Snapshot() Snapshot {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	s := Snapshot{
		RequestID: rc.RequestID,
		Method:    rc.Method,
		URL:       rc.URL,
		IP:        rc.IP,
		UserAgent: rc.UserAgent,
		StartedAt: rc.StartedAt,
		Query:     cloneValues(rc.Query),
		Headers:   cloneValues(rc.Headers),
		Params:    maps.Clone(rc.params),
		Body:      rc.body,
		UserID:    rc.userID,
	}
	if rc.failure != nil {
		f := *rc.failure
		s.Failure = &f
	}
	return s
}

func cloneValues(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
