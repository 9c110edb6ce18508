package users_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xapikit/internal/storageopt"
	"github.com/omeyang/xapikit/internal/users"
	"github.com/omeyang/xapikit/internal/users/mocks"
	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/business/xauth"
)

// seqIDs 递增 ID 生成器。
type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) Next(context.Context) (string, error) {
	return strconv.FormatInt(s.n.Add(1), 10), nil
}

type failingIDs struct{}

func (failingIDs) Next(context.Context) (string, error) { return "", errors.New("clock moved backwards") }

func newService(t *testing.T, store users.Store, opts ...users.ServiceOption) (*users.Service, *xauth.Tokens) {
	t.Helper()
	passwords, err := xauth.NewPasswords(4)
	require.NoError(t, err)
	tokens, err := xauth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	return users.NewService(store, &seqIDs{}, passwords, tokens, opts...), tokens
}

func requireInfo(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var info *xerr.Info
	require.ErrorAs(t, err, &info)
	assert.Equal(t, status, info.Status)
	assert.Equal(t, msg, info.Message())
}

func TestService_RegisterAndLogin(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	svc, tokens := newService(t, users.NewMemoryStore(), users.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	u, err := svc.Register(ctx, users.Credentials{Email: "  Alice@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "1", u.ID)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, u.CreatedAt.Equal(now))

	res, err := svc.Login(ctx, users.Credentials{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.ID)
	assert.Equal(t, "alice@example.com", res.Email)

	claims, err := tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc, _ := newService(t, users.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, users.Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, users.Credentials{Email: "A@example.com", Password: "other12"})
	requireInfo(t, err, http.StatusBadRequest, "User already exists")
}

func TestService_RegisterRaceLost(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(nil, users.ErrNotFound)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(users.ErrEmailTaken)

	svc, _ := newService(t, store)
	_, err := svc.Register(context.Background(), users.Credentials{Email: "a@example.com", Password: "secret1"})
	requireInfo(t, err, http.StatusBadRequest, "User already exists")
}

func TestService_RegisterPasswordTooLong(t *testing.T) {
	svc, _ := newService(t, users.NewMemoryStore())
	_, err := svc.Register(context.Background(), users.Credentials{
		Email:    "a@example.com",
		Password: strings.Repeat("é", 40),
	})
	var info *xerr.Info
	require.ErrorAs(t, err, &info)
	require.True(t, info.IsValidation())
	assert.Equal(t, []xerr.ValidationError{{
		Field: "password", Message: "Must be no more than 72 bytes", Code: xerr.CodeMaxLength,
	}}, info.ValidationErrors)
}

func TestService_RegisterIDFailure(t *testing.T) {
	passwords, err := xauth.NewPasswords(4)
	require.NoError(t, err)
	svc := users.NewService(users.NewMemoryStore(), failingIDs{}, passwords, nil)

	_, err = svc.Register(context.Background(), users.Credentials{Email: "a@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, xerr.StatusOf(err))
}

func TestService_LoginInvalid(t *testing.T) {
	svc, _ := newService(t, users.NewMemoryStore())
	ctx := context.Background()
	_, err := svc.Register(ctx, users.Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, users.Credentials{Email: "a@example.com", Password: "wrong"})
	requireInfo(t, err, http.StatusUnauthorized, xerr.MsgInvalidCredentials)

	_, err = svc.Login(ctx, users.Credentials{Email: "nobody@example.com", Password: "secret1"})
	requireInfo(t, err, http.StatusUnauthorized, xerr.MsgInvalidCredentials)
}

func TestService_StoreErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	down := errors.New("redis: connection refused")

	store.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, down).Times(2)
	store.EXPECT().FindByID(gomock.Any(), "1").Return(nil, down)
	store.EXPECT().List(gomock.Any(), 0, 10).Return(nil, down)

	svc, _ := newService(t, store)
	ctx := context.Background()

	_, err := svc.Register(ctx, users.Credentials{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, down)
	_, err = svc.Login(ctx, users.Credentials{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, down)
	_, err = svc.Get(ctx, "1")
	assert.ErrorIs(t, err, down)
	_, err = svc.List(ctx, storageopt.Params{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, down)
}

func TestService_Get(t *testing.T) {
	svc, _ := newService(t, users.NewMemoryStore())
	ctx := context.Background()
	u, err := svc.Register(ctx, users.Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Get(ctx, "404")
	requireInfo(t, err, http.StatusBadRequest, "User not found")
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any(), 10, 10).Return([]users.User{{ID: "3"}}, nil)
	store.EXPECT().Count(gomock.Any()).Return(21, nil)

	svc, _ := newService(t, store)
	page, err := svc.List(context.Background(), storageopt.Params{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestService_Seed(t *testing.T) {
	svc, _ := newService(t, users.NewMemoryStore())
	ctx := context.Background()

	seeds := users.SeedUsers()
	require.Len(t, seeds, 5)
	assert.Equal(t, "user1@example.com", seeds[0].Email)
	assert.Equal(t, "password5", seeds[4].Password)

	n, err := svc.Seed(ctx, seeds)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = svc.Seed(ctx, seeds)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Login(ctx, users.Credentials{Email: "user3@example.com", Password: "password3"})
	assert.NoError(t, err)
}

func TestUser_PasswordHiddenFromJSON(t *testing.T) {
	data, err := json.Marshal(users.User{ID: "1", Email: "a@example.com", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"createdAt"`)
}
