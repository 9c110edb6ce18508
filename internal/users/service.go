package users

import (
	"context"
	"errors"
	"time"

	"github.com/omeyang/xapikit/internal/storageopt"
	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/api/xresponse"
	"github.com/omeyang/xapikit/pkg/business/xauth"
)

// 响应消息。
const (
	MsgRegistered = "User registered successfully"
	MsgLoggedIn   = "Login successful"
	MsgMe         = "User info retrieved successfully"
	MsgListed     = "Users retrieved successfully"
)

// entity 错误消息中的实体名。
const entity = "User"

// IDGenerator 生成用户 ID，*xid.Generator 满足此接口。
type IDGenerator interface {
	Next(ctx context.Context) (string, error)
}

// ServiceOption 配置 Service。
type ServiceOption func(*Service)

// WithClock 替换时间来源，测试使用。
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service 注册、登录与用户查询。
type Service struct {
	store     Store
	ids       IDGenerator
	passwords *xauth.Passwords
	tokens    *xauth.Tokens
	now       func() time.Time
}

// NewService 创建 Service。
func NewService(store Store, ids IDGenerator, passwords *xauth.Passwords, tokens *xauth.Tokens, opts ...ServiceOption) *Service {
	s := &Service{store: store, ids: ids, passwords: passwords, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register 创建用户。邮箱已存在时返回 AlreadyExists("User")。
func (s *Service) Register(ctx context.Context, in Credentials) (*User, error) {
	email := NormalizeEmail(in.Email)

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, xerr.AlreadyExists(entity)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if errors.Is(err, xauth.ErrPasswordTooLong) {
		return nil, xerr.StructuredValidation([]xerr.ValidationError{{
			Field:   "password",
			Message: "Must be no more than 72 bytes",
			Code:    xerr.CodeMaxLength,
		}})
	}
	if err != nil {
		return nil, err
	}

	id, err := s.ids.Next(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &User{ID: id, Email: email, Password: hash, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, xerr.AlreadyExists(entity)
		}
		return nil, err
	}
	return u, nil
}

// Login 校验凭证并签发访问 Token。用户不存在与密码错误返回同一错误。
func (s *Service) Login(ctx context.Context, in Credentials) (*LoginResult, error) {
	u, err := s.store.FindByEmail(ctx, NormalizeEmail(in.Email))
	if errors.Is(err, ErrNotFound) {
		return nil, xerr.InvalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !s.passwords.Compare(u.Password, in.Password) {
		return nil, xerr.InvalidCredentials()
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{ID: u.ID, Email: u.Email, AccessToken: token}, nil
}

// Get 按 ID 查找用户，不存在时返回 NotFound("User")。
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, xerr.NotFound(entity)
	}
	return u, err
}

// List 分页返回用户，最新注册的在前。
func (s *Service) List(ctx context.Context, p storageopt.Params) (xresponse.Page[User], error) {
	items, err := s.store.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return xresponse.Page[User]{}, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return xresponse.Page[User]{}, err
	}
	return xresponse.NewPage(items, p.Pagination(total)), nil
}

// SeedUsers 默认种子用户：user1..user5@example.com，密码 password1..password5。
func SeedUsers() []Credentials {
	out := make([]Credentials, 5)
	for i := range out {
		n := string(rune('1' + i))
		out[i] = Credentials{Email: "user" + n + "@example.com", Password: "password" + n}
	}
	return out
}

// Seed 注册 creds 中尚不存在的用户，返回新建数量。
func (s *Service) Seed(ctx context.Context, creds []Credentials) (int, error) {
	created := 0
	for _, c := range creds {
		_, err := s.Register(ctx, c)
		var info *xerr.Info
		switch {
		case err == nil:
			created++
		case errors.As(err, &info) && info.Message() == entity+" already exists":
		default:
			return created, err
		}
	}
	return created, nil
}
