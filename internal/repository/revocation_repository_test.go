package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRevocationRepositoryRevokeAndExpire(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewRevocationRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	key := revocationKey("jti-1")
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	mr.FastForward(2 * time.Minute)
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRepositorySkipsExpiredTokens(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewRevocationRepository(client)

	require.NoError(t, repo.Revoke(context.Background(), "jti-old", time.Now().Add(-time.Minute)))
	assert.Empty(t, mr.Keys())
}

func TestRevocationRepositoryWithoutClient(t *testing.T) {
	repo := NewRevocationRepository(nil)

	require.NoError(t, repo.Revoke(context.Background(), "jti", time.Now().Add(time.Hour)))
	revoked, err := repo.IsRevoked(context.Background(), "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRepositoryReportsRedisErrors(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewRevocationRepository(client)
	mr.SetError("boom")

	_, err := repo.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
