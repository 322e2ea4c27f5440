package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// startRedis 启动一次性Redis容器，没有Docker环境时跳过
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("short模式跳过容器测试")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(startRedis(t))

	t.Run("会话读写", func(t *testing.T) {
		err := store.SaveSession(ctx, 42, map[string]interface{}{"role": "CUSTOMER", "ip": "127.0.0.1"}, time.Minute)
		require.NoError(t, err)

		session, err := store.GetSession(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "CUSTOMER", session["role"])

		require.NoError(t, store.DeleteSession(ctx, 42))
		_, err = store.GetSession(ctx, 42)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("黑名单", func(t *testing.T) {
		ok, err := store.IsInBlacklist(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.AddToBlacklist(ctx, "jti-1", time.Minute))
		ok, err = store.IsInBlacklist(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, store.AddToBlacklist(ctx, "jti-2", 0), "已过期的Token无需拉黑")
		ok, _ = store.IsInBlacklist(ctx, "jti-2")
		assert.False(t, ok)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "bookhub:session:7", sessionKey(7))
	assert.Equal(t, "bookhub:blacklist:abc", blacklistKey("abc"))
}
