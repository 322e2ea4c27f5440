package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", "bookhub-test", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(42, "reader@example.com", "ADMIN")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshTokenID)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	t.Run("access token", func(t *testing.T) {
		claims, err := m.ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "ADMIN", claims.Role)
		assert.Equal(t, "reader@example.com", claims.Email)
	})

	t.Run("refresh token带jti", func(t *testing.T) {
		claims, err := m.ParseRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshTokenID, claims.ID)
	})

	t.Run("类型不匹配被拒绝", func(t *testing.T) {
		_, err := m.ParseAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		_, err = m.ParseRefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestParseToken_Invalid(t *testing.T) {
	m := NewManager("secret-a", "", time.Hour, time.Hour)
	other := NewManager("secret-b", "", time.Hour, time.Hour)

	pair, err := other.GenerateToken(1, "a@b.cc", "CUSTOMER")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager("secret", "", -time.Minute, time.Hour)
	pair, err := m.GenerateToken(1, "a@b.cc", "CUSTOMER")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
