package memstore

import (
	"context"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/user"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	return r.s.with(func(st *state) error {
		// 邮箱唯一索引覆盖已注销用户
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return user.ErrEmailDuplicate
			}
		}
		u.ID = st.nextID("users")
		st.users[u.ID] = copyUser(u)
		return nil
	})
}

func (r *userRepo) FindByID(_ context.Context, id uint) (*user.User, error) {
	var found *user.User
	err := r.s.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok || u.IsDeleted() {
			return user.ErrUserNotFound
		}
		found = copyUser(u)
		return nil
	})
	return found, err
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	var found *user.User
	err := r.s.with(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email && !u.IsDeleted() {
				found = copyUser(u)
				return nil
			}
		}
		return user.ErrUserNotFound
	})
	return found, err
}

func (r *userRepo) Update(_ context.Context, u *user.User) error {
	return r.s.with(func(st *state) error {
		stored, ok := st.users[u.ID]
		if !ok || stored.IsDeleted() {
			return user.ErrUserNotFound
		}
		stored.Nickname = u.Nickname
		stored.Password = u.Password
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *userRepo) Delete(_ context.Context, id uint) error {
	return r.s.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok || u.IsDeleted() {
			return user.ErrUserNotFound
		}
		now := time.Now()
		u.DeletedAt = &now
		return nil
	})
}

// SetRole 直接修改角色(测试中构造管理员)
func (s *Store) SetRole(id uint, role user.Role) {
	_ = s.with(func(st *state) error {
		if u, ok := st.users[id]; ok {
			u.Role = role
		}
		return nil
	})
}

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(_ context.Context, t *user.RefreshToken) error {
	return r.s.with(func(st *state) error {
		t.ID = st.nextID("refresh_tokens")
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		c := *t
		st.tokens[t.ID] = &c
		return nil
	})
}

func (r *tokenRepo) FindByHash(_ context.Context, hash string) (*user.RefreshToken, error) {
	var found *user.RefreshToken
	err := r.s.with(func(st *state) error {
		for _, t := range st.tokens {
			if t.TokenHash == hash {
				c := *t
				found = &c
				return nil
			}
		}
		return user.ErrRefreshTokenInvalid
	})
	return found, err
}

func (r *tokenRepo) Revoke(_ context.Context, hash string) (bool, error) {
	revoked := false
	err := r.s.with(func(st *state) error {
		for _, t := range st.tokens {
			if t.TokenHash == hash && t.RevokedAt == nil {
				now := time.Now()
				t.RevokedAt = &now
				revoked = true
			}
		}
		return nil
	})
	return revoked, err
}

func (r *tokenRepo) RevokeAllByUser(_ context.Context, userID uint) error {
	return r.s.with(func(st *state) error {
		now := time.Now()
		for _, t := range st.tokens {
			if t.UserID == userID && t.RevokedAt == nil {
				t.RevokedAt = &now
			}
		}
		return nil
	})
}
