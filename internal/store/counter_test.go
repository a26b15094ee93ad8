package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*RedisCounterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCounterStore(client), mr
}

func TestCounterStore_Get_AbsentKeyReadsZero(t *testing.T) {
	store, _ := setupTestStore(t)

	count, err := store.Get(context.Background(), "failed_login_attempts:a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCounterStore_SetWithTTL_CreatesKeyWithExpiry(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	err := store.SetWithTTL(ctx, "failed_login_attempts:a@b.com", 1, 15*time.Minute)
	require.NoError(t, err)

	count, err := store.Get(ctx, "failed_login_attempts:a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 15*time.Minute, mr.TTL("failed_login_attempts:a@b.com"))
}

func TestCounterStore_Increment_AddsOneWithoutRefreshingTTL(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "counter", 1, 10*time.Minute))

	count, err := store.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Window stays anchored to the first failure.
	assert.Equal(t, 10*time.Minute, mr.TTL("counter"))
}

func TestCounterStore_Increment_AbsentKeyReturnsNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Increment(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCounterStore_Increment_ExpiredKeyReturnsNotFound(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "counter", 4, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Increment(ctx, "counter")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCounterStore_Delete_RemovesKey(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "counter", 3, time.Minute))
	require.NoError(t, store.Delete(ctx, "counter"))

	count, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Deleting an absent key is fine.
	assert.NoError(t, store.Delete(ctx, "counter"))
}
