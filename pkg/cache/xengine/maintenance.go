package xengine

import (
	"sort"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
	"github.com/omeyang/cachekit/pkg/cache/xevent"
)

// Prune 主动清理全部已过期条目，返回清理数量。
// 每个被清理的键发布 delete（成因 expired）与 expire 事件并计入过期统计，
// 最后发布一条携带清理数量的聚合 prune 事件（数量为 0 时也发布）。
// 周期清理（PruneInterval/PruneSchedule）内部调用的就是本方法。
func (c *Cache) Prune() int {
	if c.destroyed.Load() {
		return 0
	}
	var events []xevent.Event
	c.mu.Lock()
	now := c.now()
	var expired []string
	for k, e := range c.entries {
		if xentry.IsExpired(*e, now) {
			expired = append(expired, k)
		}
	}
	sort.Strings(expired)
	for _, k := range expired {
		if c.removeLocked(k, xevent.ReasonExpired, true, now, &events) {
			c.stats.RecordExpiration()
		}
	}
	c.mu.Unlock()

	events = append(events, xevent.Event{Kind: xevent.KindPrune, Count: len(expired), At: now})
	c.publish(events)
	return len(expired)
}

// Resize 调整容量上限。新容量小于当前条目数时，
// 立即按最久未访问顺序逐个淘汰至合规，与活动策略无关
// （已过期的候选按过期计数，其余按淘汰计数）。
func (c *Cache) Resize(capacity int) error {
	if c.destroyed.Load() {
		return ErrDestroyed
	}
	if capacity < 1 {
		return ErrInvalidCapacity
	}

	var events []xevent.Event
	c.mu.Lock()
	c.capacity = capacity
	c.evictToCapacityLocked(c.now(), &events)
	c.mu.Unlock()
	c.publish(events)
	return nil
}

// evictToCapacityLocked 按最久未访问顺序逐个淘汰，直至条目数不超过容量。
// 缩容淘汰不咨询活动策略，平局按键名决定，保证确定性。
func (c *Cache) evictToCapacityLocked(now time.Time, events *[]xevent.Event) {
	for len(c.entries) > c.capacity {
		var victim *xentry.Entry
		for _, e := range c.entries {
			if victim == nil ||
				e.AccessedAt.Before(victim.AccessedAt) ||
				(e.AccessedAt.Equal(victim.AccessedAt) && e.Key < victim.Key) {
				victim = e
			}
		}
		if victim == nil {
			return
		}
		if xentry.IsExpired(*victim, now) {
			if c.removeLocked(victim.Key, xevent.ReasonExpired, true, now, events) {
				c.stats.RecordExpiration()
			}
			continue
		}
		if c.removeLocked(victim.Key, xevent.ReasonEvicted, false, now, events) {
			c.stats.RecordEviction()
		}
	}
}

// sweep 是周期清理协程，Destroy 时经 stop 通道退出。
func (c *Cache) sweep(interval time.Duration) {
	defer close(c.sweepDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}
