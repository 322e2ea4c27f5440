package user_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appuser "github.com/xiebiao/bookhub/internal/application/user"
	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
	"github.com/xiebiao/bookhub/pkg/jwt"
)

// fakeSessions 内存版会话存储
type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[uint]map[string]interface{}
	blacklist map[string]time.Duration
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions:  map[uint]map[string]interface{}{},
		blacklist: map[string]time.Duration{},
	}
}

func (f *fakeSessions) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[userID] = data
	return nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

func (f *fakeSessions) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[jti] = ttl
	return nil
}

type fixture struct {
	store    *memstore.Store
	sessions *fakeSessions
	jwt      *jwt.Manager
	register *appuser.RegisterUseCase
	login    *appuser.LoginUseCase
	logout   *appuser.LogoutUseCase
	refresh  *appuser.RefreshTokenUseCase
	profile  *appuser.ProfileUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	sessions := newFakeSessions()
	manager := jwt.NewManager("test-secret", "bookhub", time.Hour, 24*time.Hour)
	svc := user.NewServiceWithCost(s.Users(), bcrypt.MinCost)
	log := zap.NewNop()
	return &fixture{
		store:    s,
		sessions: sessions,
		jwt:      manager,
		register: appuser.NewRegisterUseCase(svc),
		login:    appuser.NewLoginUseCase(svc, s, s.Tokens(), manager, sessions, log),
		logout:   appuser.NewLogoutUseCase(s.Tokens(), sessions),
		refresh:  appuser.NewRefreshTokenUseCase(s.Users(), s.Tokens(), s, manager, sessions, log),
		profile:  appuser.NewProfileUseCase(svc, s.Users(), s.Tokens(), s, sessions, log),
	}
}

func (f *fixture) signup(t *testing.T) *appuser.LoginResponse {
	t.Helper()
	ctx := context.Background()
	_, err := f.register.Execute(ctx, appuser.RegisterRequest{Email: "reader@example.com", Password: "secret123", Nickname: "读者"})
	require.NoError(t, err)
	resp, err := f.login.Execute(ctx, appuser.LoginRequest{Email: "reader@example.com", Password: "secret123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	info, err := f.register.Execute(ctx, appuser.RegisterRequest{Email: "reader@example.com", Password: "secret123", Nickname: "读者"})
	require.NoError(t, err)
	assert.Equal(t, "CUSTOMER", info.Role)

	_, err = f.register.Execute(ctx, appuser.RegisterRequest{Email: "reader@example.com", Password: "secret123", Nickname: "读者"})
	assert.ErrorIs(t, err, user.ErrEmailDuplicate)

	resp, err := f.login.Execute(ctx, appuser.LoginRequest{Email: "reader@example.com", Password: "secret123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, info.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := f.jwt.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, info.ID, claims.UserID)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.Equal(t, "10.0.0.1", f.sessions.sessions[info.ID]["ip"])

	_, err = f.login.Execute(ctx, appuser.LoginRequest{Email: "reader@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	login := f.signup(t)

	next, err := f.refresh.Execute(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, next.RefreshToken)

	_, err = f.refresh.Execute(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, user.ErrRefreshTokenInvalid, "旧Token只能使用一次")

	_, err = f.refresh.Execute(ctx, login.AccessToken)
	assert.ErrorIs(t, err, user.ErrRefreshTokenInvalid, "Access Token不能用于刷新")

	_, err = f.refresh.Execute(ctx, "garbage")
	assert.ErrorIs(t, err, user.ErrRefreshTokenInvalid)

	_, err = f.refresh.Execute(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	login := f.signup(t)

	claims, err := f.jwt.ParseAccessToken(login.AccessToken)
	require.NoError(t, err)

	err = f.logout.Execute(ctx, appuser.LogoutRequest{
		UserID:          login.User.ID,
		AccessTokenID:   claims.ID,
		AccessExpiresAt: claims.ExpiresAt.Time,
		RefreshToken:    login.RefreshToken,
	})
	require.NoError(t, err)

	ttl, blacklisted := f.sessions.blacklist[claims.ID]
	assert.True(t, blacklisted)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
	assert.NotContains(t, f.sessions.sessions, login.User.ID)

	_, err = f.refresh.Execute(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, user.ErrRefreshTokenInvalid)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	login := f.signup(t)
	id := login.User.ID

	nickname := "新昵称"
	info, err := f.profile.Update(ctx, appuser.UpdateProfileRequest{UserID: id, Nickname: &nickname})
	require.NoError(t, err)
	assert.Equal(t, "新昵称", info.Nickname)

	bad := "x"
	_, err = f.profile.Update(ctx, appuser.UpdateProfileRequest{UserID: id, Nickname: &bad})
	assert.ErrorIs(t, err, user.ErrInvalidNickname)

	_, err = f.profile.Update(ctx, appuser.UpdateProfileRequest{UserID: id, OldPassword: "nope1234", NewPassword: "newpass123"})
	assert.ErrorIs(t, err, user.ErrWrongOldPassword)

	_, err = f.profile.Update(ctx, appuser.UpdateProfileRequest{UserID: id, OldPassword: "secret123", NewPassword: "newpass123"})
	require.NoError(t, err)

	_, err = f.refresh.Execute(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, user.ErrRefreshTokenInvalid, "改密后旧Refresh Token失效")

	_, err = f.login.Execute(ctx, appuser.LoginRequest{Email: "reader@example.com", Password: "newpass123"})
	require.NoError(t, err)

	got, err := f.profile.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "新昵称", got.Nickname)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	login := f.signup(t)

	require.NoError(t, f.profile.Delete(ctx, login.User.ID))

	_, err := f.profile.Get(ctx, login.User.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.login.Execute(ctx, appuser.LoginRequest{Email: "reader@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = f.refresh.Execute(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, user.ErrRefreshTokenInvalid)

	_, err = f.register.Execute(ctx, appuser.RegisterRequest{Email: "reader@example.com", Password: "secret123", Nickname: "读者"})
	assert.ErrorIs(t, err, user.ErrEmailDuplicate, "注销后邮箱仍被占用")
}
