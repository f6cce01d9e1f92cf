package xstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract 对任意 Store 实现跑同一组契约测试。
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetSetRoundTrip", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
		data, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), data)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetEmptyKey", func(t *testing.T) {
		assert.ErrorIs(t, s.Set(ctx, "", []byte("v"), 0), ErrEmptyKey)
	})

	t.Run("Has", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "present", []byte("v"), 0))
		ok, err := s.Has(ctx, "present")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Has(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "doomed", []byte("v"), 0))
		require.NoError(t, s.Delete(ctx, "doomed"))
		_, err := s.Get(ctx, "doomed")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, s.Delete(ctx, "doomed"), "删除不存在的键不报错")
	})

	t.Run("KeysSorted", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx))
		require.NoError(t, s.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)

		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, s.Clear(ctx))
		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	s := NewMemory()
	t.Cleanup(func() { _ = s.Close() })
	testStoreContract(t, s)
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemory()
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, "过期键不出现在枚举里")
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, "k", nil, 0), ErrClosed)
	assert.ErrorIs(t, s.Close(), ErrClosed)
}

func TestLRUStore_Contract(t *testing.T) {
	s := NewLRU(128, 0)
	t.Cleanup(func() { _ = s.Close() })
	testStoreContract(t, s)
}

func TestLRUStore_CapacityEvicts(t *testing.T) {
	s := NewLRU(2, 0)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, s.Set(ctx, "c", []byte("3"), 0))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound, "最旧的条目被 LRU 淘汰")
}

func TestRistrettoStore_Contract(t *testing.T) {
	s, err := NewRistretto()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	testStoreContract(t, s)
}

func TestRistrettoStore_TTL(t *testing.T) {
	s, err := NewRistretto()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	_, err = s.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
