package xengine

import (
	"fmt"
	"sort"

	"github.com/omeyang/cachekit/pkg/cache/xdump"
	"github.com/omeyang/cachekit/pkg/cache/xentry"
	"github.com/omeyang/cachekit/pkg/cache/xevent"
)

// Dump 导出当前全部存活条目与计数器快照。
// 条目按键升序排列；每个值先经插件的 BeforeSerialize 链变换，
// 任一值变换失败则整体失败。已过期条目不导出。
func (c *Cache) Dump() (*xdump.Dump, error) {
	if c.destroyed.Load() {
		return nil, ErrDestroyed
	}
	c.mu.Lock()
	now := c.now()
	live := make([]xentry.Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if !xentry.IsExpired(*e, now) {
			live = append(live, *e)
		}
	}
	counters := c.stats.Counters()
	c.mu.Unlock()

	sort.Slice(live, func(i, j int) bool { return live[i].Key < live[j].Key })

	d := &xdump.Dump{
		Version:   xdump.Version,
		CreatedAt: now,
		Entries:   make([]xdump.Record, 0, len(live)),
		Counters:  counters,
	}
	for _, e := range live {
		v, err := c.runBeforeSerialize(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		e.Value = v
		d.Entries = append(d.Entries, xdump.FromEntry(e))
	}
	return d, nil
}

// DumpBytes 导出并编码为 JSON。
func (c *Cache) DumpBytes() ([]byte, error) {
	d, err := c.Dump()
	if err != nil {
		return nil, err
	}
	return xdump.Marshal(d)
}

// Restore 用转储内容整体替换当前条目集，返回还原的条目数。
//
// 语义要点：
//   - 版本不符返回 ErrDumpVersion，当前内容不受影响。
//   - 在还原时刻已过期的记录被跳过，不进入存储。
//   - 每个值经插件的 AfterDeserialize 链还原，任一失败则整体失败
//     且当前内容不受影响（先完整构建再替换）。
//   - 条目的时间戳、访问计数、标签、过期窗口原样保留。
//   - 计数器不回放：转储中的 Counters 仅供外部检视，
//     还原后的缓存从当前计数器继续累计。
//   - 还原本身不发布逐键事件；超出容量时按最久未访问顺序淘汰至合规
//     （与缩容一致，不咨询活动策略），这部分淘汰照常发布
//     delete/evict 事件并计入统计。
func (c *Cache) Restore(d *xdump.Dump) (int, error) {
	if c.destroyed.Load() {
		return 0, ErrDestroyed
	}
	if d == nil {
		return 0, ErrNilDump
	}
	if d.Version != xdump.Version {
		return 0, fmt.Errorf("%w: %d", ErrDumpVersion, d.Version)
	}

	now := c.now()
	restored := make(map[string]*xentry.Entry, len(d.Entries))
	for _, r := range d.Entries {
		if r.Key == "" || r.Expired(now) {
			continue
		}
		v, err := c.runAfterDeserialize(r.Key, r.Value)
		if err != nil {
			return 0, err
		}
		r.Value = v
		e := r.ToEntry()
		restored[e.Key] = &e
	}

	var events []xevent.Event
	c.mu.Lock()
	c.entries = restored
	c.index.Clear()
	c.memory = 0
	for k, e := range restored {
		c.index.Set(k, e.Tags)
		c.memory += e.Size
	}
	c.evictToCapacityLocked(now, &events)
	count := len(c.entries)
	c.mu.Unlock()
	c.publish(events)
	return count, nil
}

// RestoreBytes 解码 JSON 转储并还原。
func (c *Cache) RestoreBytes(data []byte) (int, error) {
	d, err := xdump.Unmarshal(data)
	if err != nil {
		return 0, err
	}
	return c.Restore(d)
}
