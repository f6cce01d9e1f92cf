package xengine

import (
	"slices"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
	"github.com/omeyang/cachekit/pkg/cache/xevent"
)

// TagsOf 返回键的标签集合，升序。键不存在或已过期时返回 nil。
func (c *Cache) TagsOf(key string) []string {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, c.now()) {
		return nil
	}
	return c.index.Tags(key)
}

// SetTags 用给定标签整体替换键的标签集合，返回键是否存在。
// 传入空集等价于清除全部标签。
func (c *Cache) SetTags(key string, tags ...string) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, c.now()) {
		return false
	}
	c.index.Set(key, tags)
	updated := *e
	updated.Tags = c.index.Tags(key)
	c.entries[key] = &updated
	return true
}

// AddTags 给已有键追加标签，返回键是否存在。
func (c *Cache) AddTags(key string, tags ...string) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, c.now()) {
		return false
	}
	c.index.Add(key, tags)
	updated := *e
	updated.Tags = c.index.Tags(key)
	c.entries[key] = &updated
	return true
}

// RemoveTags 摘除键上的指定标签，返回键是否存在。
// 摘除不存在的标签是无害的空操作。
func (c *Cache) RemoveTags(key string, tags ...string) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, c.now()) {
		return false
	}
	c.index.Remove(key, tags)
	updated := *e
	updated.Tags = c.index.Tags(key)
	c.entries[key] = &updated
	return true
}

// KeysWithTag 返回携带指定标签的存活键，升序。
func (c *Cache) KeysWithTag(tag string) []string {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveKeysLocked(c.index.Keys(tag))
}

// KeysWithAllTags 返回同时携带全部给定标签的存活键（交集），升序。
func (c *Cache) KeysWithAllTags(tags ...string) []string {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveKeysLocked(c.index.KeysWithAll(tags))
}

// KeysWithAnyTag 返回携带任一给定标签的存活键（并集），升序。
func (c *Cache) KeysWithAnyTag(tags ...string) []string {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveKeysLocked(c.index.KeysWithAny(tags))
}

// AllTags 返回当前在用的全部标签，升序。
func (c *Cache) AllTags() []string {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.AllTags()
}

// InvalidateTag 删除携带指定标签的全部键，返回删除数量。
// 每个被删除的键发布 delete 事件（成因 invalidated），计入删除统计。
func (c *Cache) InvalidateTag(tag string) int {
	return c.InvalidateTags(tag)
}

// InvalidateTags 删除携带任一给定标签的全部键（并集），返回删除数量。
func (c *Cache) InvalidateTags(tags ...string) int {
	if c.destroyed.Load() {
		return 0
	}
	var events []xevent.Event
	c.mu.Lock()
	now := c.now()
	removed := 0
	for _, key := range c.index.KeysWithAny(tags) {
		if c.removeLocked(key, xevent.ReasonInvalidated, false, now, &events) {
			c.stats.RecordDelete()
			removed++
		}
	}
	c.mu.Unlock()
	c.publish(events)
	return removed
}

// liveKeysLocked 过滤掉已过期的键，保持输入的升序。
func (c *Cache) liveKeysLocked(keys []string) []string {
	now := c.now()
	return slices.DeleteFunc(keys, func(k string) bool {
		e, ok := c.entries[k]
		return !ok || xentry.IsExpired(*e, now)
	})
}
