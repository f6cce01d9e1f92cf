package xstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, opts ...RedisOption) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewRedis(client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_Contract(t *testing.T) {
	s, _ := newRedisStore(t)
	testStoreContract(t, s)
}

func TestRedisStore_NilClient(t *testing.T) {
	_, err := NewRedis(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	s, mr := newRedisStore(t, WithKeyPrefix("app:"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("app:k"), "落库的键带统一前缀")

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys, "枚举返回去前缀后的键")
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ClearOnlyTouchesPrefix(t *testing.T) {
	s, mr := newRedisStore(t, WithKeyPrefix("app:"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, mr.Set("other", "data"))

	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("app:k"))
	assert.True(t, mr.Exists("other"), "前缀之外的数据不受影响")
}

func TestRedisStore_Closed(t *testing.T) {
	s, _ := newRedisStore(t)
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Close(), ErrClosed)
}
