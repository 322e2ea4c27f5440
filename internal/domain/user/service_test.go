package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepo 内存版用户仓储，只覆盖Service用到的方法
type fakeRepo struct {
	byEmail map[string]*User
	nextID  uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*User{}}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailDuplicate
	}
	r.nextID++
	u.ID = r.nextID
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == id && !u.IsDeleted() {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok || u.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) Update(_ context.Context, _ *User) error { return nil }

func (r *fakeRepo) Delete(_ context.Context, id uint) error {
	u, err := r.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := NewServiceWithCost(newFakeRepo(), bcrypt.MinCost)

	t.Run("注册成功默认CUSTOMER", func(t *testing.T) {
		u, err := svc.Register(ctx, "reader@example.com", "secret123", "读者")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, RoleCustomer, u.Role)
		assert.NotEqual(t, "secret123", u.Password)
	})

	t.Run("邮箱重复", func(t *testing.T) {
		_, err := svc.Register(ctx, "reader@example.com", "secret123", "another")
		assert.ErrorIs(t, err, ErrEmailDuplicate)
	})

	cases := []struct {
		name, email, password, nickname string
		want                            error
	}{
		{"邮箱格式", "not-an-email", "secret123", "nick", ErrInvalidEmail},
		{"密码过短", "a@b.cc", "s1", "nick", ErrWeakPassword},
		{"密码无数字", "a@b.cc", "secretsecret", "nick", ErrWeakPassword},
		{"昵称过短", "a@b.cc", "secret123", "x", ErrInvalidNickname},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.email, tc.password, tc.nickname)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewServiceWithCost(repo, bcrypt.MinCost)
	registered, err := svc.Register(ctx, "reader@example.com", "secret123", "读者")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "reader@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Login(ctx, "reader@example.com", "wrong1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, repo.Delete(ctx, registered.ID))
	_, err = svc.Login(ctx, "reader@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "注销用户不能登录")
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewServiceWithCost(newFakeRepo(), bcrypt.MinCost)
	u, err := svc.Register(ctx, "reader@example.com", "secret123", "读者")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u, "wrong1234", "newpass123"), ErrWrongOldPassword)
	assert.ErrorIs(t, svc.ChangePassword(u, "secret123", "short"), ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(u, "secret123", "newpass123"))
	_, err = svc.Login(ctx, "reader@example.com", "newpass123")
	assert.NoError(t, err)
}

func TestRefreshTokenIsActive(t *testing.T) {
	now := time.Now()
	tok := &RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.IsActive(now))
	assert.False(t, tok.IsActive(now.Add(2*time.Hour)))

	tok.RevokedAt = &now
	assert.False(t, tok.IsActive(now))
}
