package xengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/cachekit/pkg/cache/xdump"
)

func TestDumpRestore_RoundTrip(t *testing.T) {
	src, clk := newTestCache(t)
	require.NoError(t, src.Set("a", "1", WithTags("x"), WithTTL(time.Hour)))
	require.NoError(t, src.Set("b", "2"))
	_, _ = src.Get("a")

	d, err := src.Dump()
	require.NoError(t, err)
	assert.Equal(t, xdump.Version, d.Version)
	require.Len(t, d.Entries, 2)
	assert.Equal(t, "a", d.Entries[0].Key, "条目按键升序")
	assert.Equal(t, int64(1), d.Counters.Hits)

	dst, err := New()
	require.NoError(t, err)
	dst.SetNow(clk.Now)
	t.Cleanup(func() { _ = dst.Destroy() })

	n, err := dst.Restore(d)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, ok := dst.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"a"}, dst.KeysWithTag("x"), "标签索引随还原重建")

	e := dst.Entries()[0]
	assert.Equal(t, int64(2), e.AccessCount, "还原保留访问计数，Get 再加一")
	assert.Equal(t, int64(0), dst.Stats().Sets, "计数器不回放")
}

func TestDump_ExcludesExpired(t *testing.T) {
	c, clk := newTestCache(t)
	require.NoError(t, c.Set("dead", 1, WithTTL(time.Second)))
	require.NoError(t, c.Set("live", 2))
	clk.Advance(2 * time.Second)

	d, err := c.Dump()
	require.NoError(t, err)
	require.Len(t, d.Entries, 1)
	assert.Equal(t, "live", d.Entries[0].Key)
}

func TestRestore_SkipsExpiredRecords(t *testing.T) {
	src, clk := newTestCache(t)
	require.NoError(t, src.Set("dead", 1, WithTTL(time.Minute)))
	require.NoError(t, src.Set("live", 2))

	d, err := src.Dump()
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	dst, err := New()
	require.NoError(t, err)
	dst.SetNow(clk.Now)
	t.Cleanup(func() { _ = dst.Destroy() })

	n, err := dst.Restore(d)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, dst.Has("dead"))
}

func TestRestore_ReplacesCurrentContents(t *testing.T) {
	src, _ := newTestCache(t)
	require.NoError(t, src.Set("new", 1))
	d, err := src.Dump()
	require.NoError(t, err)

	dst, _ := newTestCache(t)
	require.NoError(t, dst.Set("old", 0, WithTags("stale-tag")))

	_, err = dst.Restore(d)
	require.NoError(t, err)
	assert.False(t, dst.Has("old"))
	assert.Empty(t, dst.KeysWithTag("stale-tag"))
	assert.True(t, dst.Has("new"))
}

func TestRestore_Validation(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Restore(nil)
	assert.ErrorIs(t, err, ErrNilDump)

	_, err = c.Restore(&xdump.Dump{Version: 99})
	assert.ErrorIs(t, err, ErrDumpVersion)
}

func TestDumpBytesRestoreBytes(t *testing.T) {
	src, _ := newTestCache(t)
	require.NoError(t, src.Set("k", "v"))

	data, err := src.DumpBytes()
	require.NoError(t, err)

	dst, _ := newTestCache(t)
	n, err := dst.RestoreBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, ok := dst.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRestore_EnforcesCapacity(t *testing.T) {
	src, _ := newTestCache(t)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, src.Set(k, 1))
	}
	d, err := src.Dump()
	require.NoError(t, err)

	dst, err := New(WithCapacity(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Destroy() })

	n, err := dst.Restore(d)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "超出容量的部分按最久未访问顺序淘汰")
	assert.Equal(t, []string{"b", "c"}, dst.Keys())
}
