// internal/matching/cache/redis_test.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jobmatch-workers/internal/matching"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ matching.Store = (*RedisStore)(nil)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "match:c1:j1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "match:c1:j1", []byte(`{"score":88}`), time.Hour))

	val, found, err := store.Get(ctx, "match:c1:j1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"score":88}`, string(val))

	require.NoError(t, store.Delete(ctx, "match:c1:j1"))
	_, found, err = store.Get(ctx, "match:c1:j1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "match:c1:j1", []byte("x"), 24*time.Hour))
	assert.Equal(t, 24*time.Hour, mr.TTL("match:c1:j1"))

	mr.FastForward(24*time.Hour + time.Second)

	_, found, err := store.Get(ctx, "match:c1:j1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_DeleteByPrefix(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client)
	store.scanCount = 7
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("match:c1:job-%d", i), "x"))
	}
	require.NoError(t, mr.Set("match:c10:job-1", "x"))
	require.NoError(t, mr.Set("match:c2:job-1", "x"))

	removed, err := store.DeleteByPrefix(ctx, "match:c1:")
	require.NoError(t, err)
	assert.Equal(t, 250, removed)

	assert.True(t, mr.Exists("match:c10:job-1"))
	assert.True(t, mr.Exists("match:c2:job-1"))
	assert.Len(t, mr.Keys(), 2)
}

func TestRedisStore_DeleteByPrefixEscapesGlob(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, mr.Set("match:c*:j1", "x"))
	require.NoError(t, mr.Set("match:cX:j1", "x"))

	removed, err := store.DeleteByPrefix(ctx, "match:c*:")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, mr.Exists("match:cX:j1"))
}

func TestRedisStore_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	mock.ExpectGet("match:c1:j1").SetErr(errors.New("connection refused"))
	_, found, err := store.Get(ctx, "match:c1:j1")
	assert.Error(t, err)
	assert.False(t, found)

	mock.ExpectSet("match:c1:j1", []byte("x"), time.Minute).SetErr(errors.New("READONLY"))
	assert.Error(t, store.Set(ctx, "match:c1:j1", []byte("x"), time.Minute))

	mock.ExpectDel("match:c1:j1").SetErr(errors.New("connection reset"))
	assert.Error(t, store.Delete(ctx, "match:c1:j1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_WithResultCache(t *testing.T) {
	_, client := setupRedis(t)
	c := matching.NewResultCache(NewRedisStore(client), 0)
	ctx := context.Background()

	result := &matching.MatchResult{
		Score:       88,
		Breakdown:   matching.Breakdown{Skills: 100, TechStack: 100, Experience: 70, Location: 100, Salary: 50, CulturalFit: 50},
		Explanation: []string{"a", "b", "c"},
	}
	require.NoError(t, c.Put(ctx, "j1", "c1", result, 0))
	require.NoError(t, c.Put(ctx, "j2", "c1", result, 0))
	require.NoError(t, c.Put(ctx, "j1", "c2", result, 0))

	got, found, err := c.Get(ctx, "j1", "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, result, got)

	removed, err := c.InvalidateAllForCandidate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, found, _ = c.Get(ctx, "j2", "c1")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "j1", "c2")
	assert.True(t, found)
}

func TestRedisStore_InvalidateAllForCandidateAcrossBatches(t *testing.T) {
	_, client := setupRedis(t)
	c := matching.NewResultCache(NewRedisStore(client), 0)
	ctx := context.Background()

	result := &matching.MatchResult{Score: 70, Explanation: []string{"a", "b", "c"}}
	for i := 0; i < 150; i++ {
		require.NoError(t, c.Put(ctx, fmt.Sprintf("job-%d", i), "cand-1", result, 0))
	}
	require.NoError(t, c.Put(ctx, "job-1", "cand-2", result, 0))

	removed, err := c.InvalidateAllForCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, 150, removed)

	for i := 0; i < 150; i++ {
		_, found, err := c.Get(ctx, fmt.Sprintf("job-%d", i), "cand-1")
		require.NoError(t, err)
		assert.False(t, found, "job-%d still cached", i)
	}
	_, found, err := c.Get(ctx, "job-1", "cand-2")
	require.NoError(t, err)
	assert.True(t, found)
}
