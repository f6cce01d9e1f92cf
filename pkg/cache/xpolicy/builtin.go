package xpolicy

import (
	"github.com/omeyang/cachekit/pkg/cache/xentry"
)

// lruPolicy 按最近访问时间升序淘汰。
type lruPolicy struct{}

func (lruPolicy) Name() string { return LRU }

func (lruPolicy) Victims(entries []*xentry.Entry, capacity int, pc Context) []string {
	return rank(entries, Quota(len(entries), capacity), func(a, b *xentry.Entry) int {
		return compareTime(a.AccessedAt, b.AccessedAt)
	})
}

func (lruPolicy) OnAccess(*xentry.Entry) {}
func (lruPolicy) OnSet(*xentry.Entry)    {}

// lfuPolicy 按访问次数升序淘汰，次数相同时最久未访问先出。
type lfuPolicy struct{}

func (lfuPolicy) Name() string { return LFU }

func (lfuPolicy) Victims(entries []*xentry.Entry, capacity int, pc Context) []string {
	return rank(entries, Quota(len(entries), capacity), func(a, b *xentry.Entry) int {
		switch {
		case a.AccessCount < b.AccessCount:
			return -1
		case a.AccessCount > b.AccessCount:
			return 1
		default:
			return compareTime(a.AccessedAt, b.AccessedAt)
		}
	})
}

func (lfuPolicy) OnAccess(*xentry.Entry) {}
func (lfuPolicy) OnSet(*xentry.Entry)    {}

// fifoPolicy 按创建时间升序淘汰。
type fifoPolicy struct{}

func (fifoPolicy) Name() string { return FIFO }

func (fifoPolicy) Victims(entries []*xentry.Entry, capacity int, pc Context) []string {
	return rank(entries, Quota(len(entries), capacity), func(a, b *xentry.Entry) int {
		return compareTime(a.CreatedAt, b.CreatedAt)
	})
}

func (fifoPolicy) OnAccess(*xentry.Entry) {}
func (fifoPolicy) OnSet(*xentry.Entry)    {}

// ttlPolicy 只移除已过期条目，完全忽略容量。
// 返回的键数可能少于配额，甚至为空；此时条目数允许越过容量上限。
type ttlPolicy struct{}

func (ttlPolicy) Name() string { return TTL }

func (ttlPolicy) Victims(entries []*xentry.Entry, capacity int, pc Context) []string {
	var keys []string
	for _, e := range entries {
		if xentry.IsExpired(*e, pc.Now) {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func (ttlPolicy) OnAccess(*xentry.Entry) {}
func (ttlPolicy) OnSet(*xentry.Entry)    {}

// swrPolicy 已过期条目优先，不足时按 lru 顺序在未过期条目中补足配额。
type swrPolicy struct{}

func (swrPolicy) Name() string { return SWR }

func (swrPolicy) Victims(entries []*xentry.Entry, capacity int, pc Context) []string {
	quota := Quota(len(entries), capacity)

	var expired, fresh []*xentry.Entry
	for _, e := range entries {
		if xentry.IsExpired(*e, pc.Now) {
			expired = append(expired, e)
		} else {
			fresh = append(fresh, e)
		}
	}

	// 已过期条目按最近访问时间排序取出，占用配额。
	keys := rank(expired, quota, func(a, b *xentry.Entry) int {
		return compareTime(a.AccessedAt, b.AccessedAt)
	})
	if len(keys) >= quota {
		return keys[:quota]
	}

	// 剩余配额按 lru 顺序从未过期条目补足。
	rest := rank(fresh, quota-len(keys), func(a, b *xentry.Entry) int {
		return compareTime(a.AccessedAt, b.AccessedAt)
	})
	return append(keys, rest...)
}

func (swrPolicy) OnAccess(*xentry.Entry) {}
func (swrPolicy) OnSet(*xentry.Entry)    {}
