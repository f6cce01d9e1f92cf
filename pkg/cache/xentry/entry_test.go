package xentry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func ptr(d time.Duration) *time.Duration { return &d }

// =============================================================================
// New
// =============================================================================

func TestNew_WithExplicitTTL_DerivesWindow(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(time.Second)}, Defaults{}, t0)

	assert.Equal(t, "k", e.Key)
	assert.Equal(t, time.Second, e.TTL)
	assert.Equal(t, t0.Add(time.Second), e.ExpiresAt)
	assert.True(t, e.StaleAt.IsZero())
	assert.Equal(t, t0, e.CreatedAt)
	assert.Equal(t, int64(0), e.AccessCount)
}

func TestNew_WithoutTTL_FallsBackToDefault(t *testing.T) {
	e := New("k", "v", Options{}, Defaults{TTL: time.Minute}, t0)

	assert.Equal(t, time.Minute, e.TTL)
	assert.Equal(t, t0.Add(time.Minute), e.ExpiresAt)
}

func TestNew_WithZeroTTL_SuppressesDefault(t *testing.T) {
	// 显式 0 表示"不过期"，与未设置（回落默认值）语义不同。
	e := New("k", "v", Options{TTL: ptr(time.Duration(0))}, Defaults{TTL: time.Minute}, t0)

	assert.Equal(t, time.Duration(0), e.TTL)
	assert.True(t, e.ExpiresAt.IsZero())
}

func TestNew_WithStaleBeforeExpiry_KeepsBoth(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(5 * time.Second), Stale: ptr(100 * time.Millisecond)}, Defaults{}, t0)

	assert.Equal(t, t0.Add(100*time.Millisecond), e.StaleAt)
	assert.Equal(t, t0.Add(5*time.Second), e.ExpiresAt)
	assert.True(t, e.StaleAt.Before(e.ExpiresAt))
}

func TestNew_WithStaleAtOrAfterExpiry_DropsStale(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(time.Second), Stale: ptr(time.Second)}, Defaults{}, t0)

	assert.True(t, e.StaleAt.IsZero())
	assert.False(t, e.ExpiresAt.IsZero())
}

func TestNew_DeduplicatesTags(t *testing.T) {
	e := New("k", "v", Options{Tags: []string{"b", "a", "b"}}, Defaults{}, t0)

	assert.Equal(t, []string{"a", "b"}, e.Tags)
}

// =============================================================================
// Update
// =============================================================================

func TestUpdate_MergesTagsAndMetadata(t *testing.T) {
	e := New("k", "v1", Options{Tags: []string{"a"}, Metadata: map[string]any{"x": 1}}, Defaults{}, t0)
	e2 := Update(e, "v2", Options{Tags: []string{"b"}, Metadata: map[string]any{"y": 2}}, Defaults{}, t0.Add(time.Second))

	assert.Equal(t, "v2", e2.Value)
	assert.Equal(t, []string{"a", "b"}, e2.Tags)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, e2.Metadata)
	assert.Equal(t, t0, e2.CreatedAt)
	assert.Equal(t, t0.Add(time.Second), e2.UpdatedAt)
}

func TestUpdate_WithoutTTL_ReusesOwnTTL(t *testing.T) {
	e := New("k", "v1", Options{TTL: ptr(time.Minute)}, Defaults{}, t0)
	e2 := Update(e, "v2", Options{}, Defaults{TTL: time.Hour}, t0.Add(time.Second))

	// 条目自身的 TTL 优先于缓存默认值。
	assert.Equal(t, time.Minute, e2.TTL)
	assert.Equal(t, t0.Add(time.Second).Add(time.Minute), e2.ExpiresAt)
}

func TestUpdate_PreservesAccessCount(t *testing.T) {
	e := New("k", "v1", Options{}, Defaults{}, t0)
	e = RecordAccess(e, t0.Add(time.Second))
	e2 := Update(e, "v2", Options{}, Defaults{}, t0.Add(2*time.Second))

	assert.Equal(t, int64(1), e2.AccessCount)
}

// =============================================================================
// Touch / RecordAccess
// =============================================================================

func TestTouch_RefreshesWindowFromOwnTTL(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(time.Second)}, Defaults{}, t0)
	later := t0.Add(500 * time.Millisecond)
	e2 := Touch(e, later)

	assert.Equal(t, later.Add(time.Second), e2.ExpiresAt)
	assert.Equal(t, int64(1), e2.AccessCount)
	assert.Equal(t, later, e2.AccessedAt)
}

func TestTouch_WithoutTTL_OnlyRecordsAccess(t *testing.T) {
	e := New("k", "v", Options{}, Defaults{}, t0)
	e2 := Touch(e, t0.Add(time.Second))

	assert.True(t, e2.ExpiresAt.IsZero())
	assert.Equal(t, int64(1), e2.AccessCount)
}

func TestRecordAccess_DoesNotChangeWindow(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(time.Second)}, Defaults{}, t0)
	e2 := RecordAccess(e, t0.Add(100*time.Millisecond))

	assert.Equal(t, e.ExpiresAt, e2.ExpiresAt)
	assert.Equal(t, int64(1), e2.AccessCount)
	assert.Equal(t, t0.Add(100*time.Millisecond), e2.AccessedAt)
}

// =============================================================================
// 谓词
// =============================================================================

func TestIsExpired_AtBoundary_IsExpired(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(time.Second)}, Defaults{}, t0)

	assert.False(t, IsExpired(e, t0.Add(999*time.Millisecond)))
	// expiresAt ≤ now 即过期，边界时刻本身算过期。
	assert.True(t, IsExpired(e, t0.Add(time.Second)))
	assert.True(t, IsExpired(e, t0.Add(2*time.Second)))
}

func TestIsStale_Semantics(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(5 * time.Second), Stale: ptr(100 * time.Millisecond)}, Defaults{}, t0)

	assert.False(t, IsStale(e, t0.Add(50*time.Millisecond)))
	assert.True(t, IsStale(e, t0.Add(150*time.Millisecond)))
	// 已过期的条目不算陈旧。
	assert.False(t, IsStale(e, t0.Add(6*time.Second)))
}

func TestRemainingTTL(t *testing.T) {
	e := New("k", "v", Options{TTL: ptr(time.Second)}, Defaults{}, t0)

	remaining, ok := RemainingTTL(e, t0.Add(400*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 600*time.Millisecond, remaining)

	remaining, ok = RemainingTTL(e, t0.Add(2*time.Second))
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), remaining)

	noTTL := New("k", "v", Options{}, Defaults{}, t0)
	_, ok = RemainingTTL(noTTL, t0)
	assert.False(t, ok)
}

// =============================================================================
// EstimateSize
// =============================================================================

func TestEstimateSize(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  int64
	}{
		{"nil value", "k", nil, 1},
		{"string", "key", "hello", 8},
		{"bytes", "k", []byte{1, 2, 3}, 4},
		{"bool", "k", true, 2},
		{"int", "k", 42, 9},
		{"struct falls back to json", "k", struct {
			A int `json:"a"`
		}{A: 1}, 1 + int64(len(`{"a":1}`))},
		{"unmarshalable counts key only", "k", make(chan int), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateSize(tt.key, tt.value))
		})
	}
}
