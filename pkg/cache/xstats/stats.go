package xstats

import (
	"sort"
	"strings"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
)

// Counters 是计数器的一次性快照。
type Counters struct {
	// Hits 命中次数。
	Hits int64 `json:"hits"`

	// Misses 未命中次数。
	Misses int64 `json:"misses"`

	// Sets 写入次数。
	Sets int64 `json:"sets"`

	// Deletes 删除次数（含显式删除与批量失效）。
	Deletes int64 `json:"deletes"`

	// Evictions 容量/内存淘汰次数。
	Evictions int64 `json:"evictions"`

	// Expirations 过期移除次数（惰性发现与周期清理）。
	Expirations int64 `json:"expirations"`
}

// HitRate 返回命中率。分母为零时返回 0。
func (c Counters) HitRate() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total)
}

// Snapshot 是计数器之外、扫描存活条目集派生出的全量快照。
type Snapshot struct {
	Counters

	// HitRate 快照时刻的命中率。
	HitRate float64 `json:"hit_rate"`

	// EntryCount 存活条目数。
	EntryCount int `json:"entry_count"`

	// MemoryBytes 近似内存占用。
	MemoryBytes int64 `json:"memory_bytes"`

	// Namespaces 在用命名空间，按键的首个冒号前缀推断，升序。
	Namespaces []string `json:"namespaces"`

	// OldestKey 创建时间最早的条目键，空缓存时为空串。
	OldestKey string `json:"oldest_key"`

	// NewestKey 创建时间最新的条目键，空缓存时为空串。
	NewestKey string `json:"newest_key"`

	// AvgTTL 携带 TTL 的条目的平均 TTL，无此类条目时为 0。
	AvgTTL time.Duration `json:"avg_ttl"`

	// Uptime 自创建或上次 Reset 以来的运行时长。
	Uptime time.Duration `json:"uptime"`
}

// Tracker 维护单调递增的操作计数器。
// 不做并发保护，由持有方加锁。
type Tracker struct {
	counters  Counters
	startedAt time.Time
	disabled  bool
}

// NewTracker 创建计数器，运行时钟从 now 起算。
func NewTracker(now time.Time) *Tracker {
	return &Tracker{startedAt: now}
}

// SetEnabled 开关计数。关闭后 Record* 全部为空操作，
// 已累计的数值保持不变，Snapshot 的规模类字段不受影响。
func (t *Tracker) SetEnabled(enabled bool) { t.disabled = !enabled }

// RecordHit 记录一次命中。
func (t *Tracker) RecordHit() {
	if t.disabled {
		return
	}
	t.counters.Hits++
}

// RecordMiss 记录一次未命中。
func (t *Tracker) RecordMiss() {
	if t.disabled {
		return
	}
	t.counters.Misses++
}

// RecordSet 记录一次写入。
func (t *Tracker) RecordSet() {
	if t.disabled {
		return
	}
	t.counters.Sets++
}

// RecordDelete 记录一次删除。
func (t *Tracker) RecordDelete() {
	if t.disabled {
		return
	}
	t.counters.Deletes++
}

// RecordEviction 记录一次淘汰。
func (t *Tracker) RecordEviction() {
	if t.disabled {
		return
	}
	t.counters.Evictions++
}

// RecordExpiration 记录一次过期移除。
func (t *Tracker) RecordExpiration() {
	if t.disabled {
		return
	}
	t.counters.Expirations++
}

// Counters 返回计数器快照。
func (t *Tracker) Counters() Counters { return t.counters }

// HitRate 返回当前命中率。
func (t *Tracker) HitRate() float64 { return t.counters.HitRate() }

// Uptime 返回自创建或上次 Reset 以来的运行时长。
func (t *Tracker) Uptime(now time.Time) time.Duration { return now.Sub(t.startedAt) }

// Reset 清零计数器并重启运行时钟，不触碰存储的条目。
func (t *Tracker) Reset(now time.Time) {
	t.counters = Counters{}
	t.startedAt = now
}

// Restore 用给定快照覆盖计数器，供转储恢复场景使用。
func (t *Tracker) Restore(c Counters) { t.counters = c }

// Snapshot 扫描存活条目集，派生全量快照。
func (t *Tracker) Snapshot(entries []*xentry.Entry, now time.Time) Snapshot {
	s := Snapshot{
		Counters:   t.counters,
		HitRate:    t.counters.HitRate(),
		EntryCount: len(entries),
		Uptime:     now.Sub(t.startedAt),
	}

	namespaces := make(map[string]struct{})
	var ttlSum time.Duration
	var ttlCount int64
	var oldest, newest *xentry.Entry

	for _, e := range entries {
		s.MemoryBytes += e.Size
		if idx := strings.Index(e.Key, ":"); idx > 0 {
			namespaces[e.Key[:idx]] = struct{}{}
		}
		if e.TTL > 0 {
			ttlSum += e.TTL
			ttlCount++
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
		if newest == nil || e.CreatedAt.After(newest.CreatedAt) {
			newest = e
		}
	}

	if len(namespaces) > 0 {
		s.Namespaces = make([]string, 0, len(namespaces))
		for ns := range namespaces {
			s.Namespaces = append(s.Namespaces, ns)
		}
		sort.Strings(s.Namespaces)
	}
	if ttlCount > 0 {
		s.AvgTTL = ttlSum / time.Duration(ttlCount)
	}
	if oldest != nil {
		s.OldestKey = oldest.Key
	}
	if newest != nil {
		s.NewestKey = newest.Key
	}
	return s
}
