package xengine

import "time"

// SetNow 仅测试可见：注入引擎时钟。
func (c *Cache) SetNow(f func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = f
}
