package xengine

import (
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
	"github.com/omeyang/cachekit/pkg/cache/xevent"
)

// GetTTL 返回键的剩余存活时长。
// 键不存在、已过期或无过期时间时返回 (0, false)。
func (c *Cache) GetTTL(key string) (time.Duration, bool) {
	if c.destroyed.Load() {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, now) {
		return 0, false
	}
	return xentry.RemainingTTL(*e, now)
}

// SetTTL 以当前时间为基准重设键的 TTL，返回键是否存在。
// ttl ≤ 0 表示清除过期时间，条目转为永不过期（陈旧边界一并清除）。
// 不刷新访问元数据，不计入统计。
func (c *Cache) SetTTL(key string, ttl time.Duration) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, now) {
		return false
	}
	updated := *e
	if ttl <= 0 {
		updated.TTL = 0
		updated.ExpiresAt = time.Time{}
		updated.StaleAt = time.Time{}
	} else {
		updated.TTL = ttl
		updated.ExpiresAt = now.Add(ttl)
		// 陈旧边界必须严格早于过期时间，越界时丢弃。
		if !updated.StaleAt.IsZero() && !updated.StaleAt.Before(updated.ExpiresAt) {
			updated.StaleAt = time.Time{}
		}
	}
	c.entries[key] = &updated
	return true
}

// Touch 按条目自身的 TTL 从当前时间重建过期窗口（滑动过期），
// 并记录一次访问。返回键是否存在。无 TTL 的条目仅记录访问。
func (c *Cache) Touch(key string) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, now) {
		return false
	}
	updated := xentry.Touch(*e, now)
	c.entries[key] = &updated
	c.policy.OnAccess(&updated)
	return true
}

// Expire 立即让键过期并移除，返回键是否存在（且尚未过期）。
// 发布 delete（成因 expired）与 expire 事件，计入过期统计。
func (c *Cache) Expire(key string) bool {
	if c.destroyed.Load() {
		return false
	}
	var events []xevent.Event
	c.mu.Lock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, now) {
		// 已自然过期的条目顺手清理，但对调用方报告不存在。
		if ok {
			c.removeLocked(key, xevent.ReasonExpired, true, now, &events)
			c.stats.RecordExpiration()
		}
		c.mu.Unlock()
		c.publish(events)
		return false
	}
	c.removeLocked(key, xevent.ReasonExpired, true, now, &events)
	c.stats.RecordExpiration()
	c.mu.Unlock()
	c.publish(events)
	return true
}
