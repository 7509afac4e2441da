package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

func TestCacheRepositoryRoundTrip(t *testing.T) {
	srv, client := newRedis(t)
	repo := NewCacheRepository(client)
	ctx := context.Background()

	var out []models.Subject
	assert.ErrorIs(t, repo.Get(ctx, "catalog:s1:subjects:1:20:", &out), ErrCacheMiss)

	in := []models.Subject{{ID: testSubjectID, SchoolID: testSchoolID, Code: "MATH", Name: "Math"}}
	require.NoError(t, repo.Set(ctx, "catalog:s1:subjects:1:20:", in, time.Minute))
	require.NoError(t, repo.Get(ctx, "catalog:s1:subjects:1:20:", &out))
	assert.Equal(t, "MATH", out[0].Code)

	srv.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "catalog:s1:subjects:1:20:", &out), ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	srv, client := newRedis(t)
	repo := NewCacheRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "catalog:s1:subjects:a", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "catalog:s1:subjects:b", 2, time.Minute))
	require.NoError(t, repo.Set(ctx, "catalog:s2:subjects:a", 3, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "catalog:s1:subjects:*"))
	assert.False(t, srv.Exists("catalog:s1:subjects:a"))
	assert.False(t, srv.Exists("catalog:s1:subjects:b"))
	assert.True(t, srv.Exists("catalog:s2:subjects:a"))

	require.NoError(t, repo.DeleteByPattern(ctx, "nothing:*"))
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var out int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &out), ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
