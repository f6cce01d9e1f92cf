package xengine

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
	"github.com/omeyang/cachekit/pkg/cache/xevent"
	"github.com/omeyang/cachekit/pkg/cache/xpolicy"
	"github.com/omeyang/cachekit/pkg/cache/xstats"
	"github.com/omeyang/cachekit/pkg/cache/xtag"
)

// Cache 是缓存引擎：持有条目存储，应用活动淘汰策略，
// 维护标签索引与统计计数，并通过通知器发布生命周期事件。
// 必须通过 [New] 创建，零值不可用。
//
// 所有方法都是并发安全的：引擎自身的后台清理与 stale-while-revalidate
// 的后台刷新就是内部并发写入方，因此同步由引擎内部的互斥锁承担，
// 调用方无需再加外部锁。
//
// Destroy 之后，带错误返回值的操作返回 ErrDestroyed；
// 无错误返回值的读操作返回零值/false，写操作静默忽略。
type Cache struct {
	mu       sync.Mutex
	opts     *Options
	policy   xpolicy.Policy
	entries  map[string]*xentry.Entry
	index    *xtag.Index
	stats    *xstats.Tracker
	notifier *xevent.Notifier
	group    singleflight.Group
	memory   int64
	capacity int

	destroyed atomic.Bool
	now       func() time.Time

	stop      chan struct{}
	sweepDone chan struct{}
	cron      *cron.Cron

	// reval 等待在途的后台刷新；revalidating 保证同键至多一个刷新在飞。
	reval        sync.WaitGroup
	revalidating map[string]struct{}
}

// New 创建缓存引擎。
// 构造期校验（fail-fast）：
//   - Capacity < 1 → ErrInvalidCapacity
//   - DefaultTTL/DefaultStale 为负 → ErrInvalidTTL
//   - 未知策略名 → xpolicy.ErrUnknownPolicy
//   - PruneSchedule 非法 → ErrInvalidSchedule
//
// 默认策略是显式的 lru（容量 1000），不依赖省略语义。
func New(opts ...Option) (*Cache, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	if options.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if options.DefaultTTL < 0 || options.DefaultStale < 0 {
		return nil, ErrInvalidTTL
	}

	policy := options.Policy
	if policy == nil {
		var err error
		policy, err = xpolicy.ForName(options.PolicyName)
		if err != nil {
			return nil, err
		}
	}

	c := &Cache{
		opts:         options,
		policy:       policy,
		entries:      make(map[string]*xentry.Entry),
		index:        xtag.New(),
		notifier:     xevent.NewNotifier(options.Logger),
		capacity:     options.Capacity,
		now:          time.Now,
		revalidating: make(map[string]struct{}),
	}
	c.stats = xstats.NewTracker(c.now())
	if options.DisableStats {
		c.stats.SetEnabled(false)
	}

	if options.PruneSchedule != "" {
		runner := cron.New()
		if _, err := runner.AddFunc(options.PruneSchedule, func() { c.Prune() }); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, options.PruneSchedule, err)
		}
		c.cron = runner
	}

	for _, p := range options.Plugins {
		if p != nil && p.OnInit != nil {
			if err := p.OnInit(c); err != nil {
				return nil, fmt.Errorf("xengine: plugin init: %w", err)
			}
		}
	}

	if options.PruneInterval > 0 {
		c.stop = make(chan struct{})
		c.sweepDone = make(chan struct{})
		go c.sweep(options.PruneInterval)
	}
	if c.cron != nil {
		c.cron.Start()
	}

	return c, nil
}

// =============================================================================
// 核心读写
// =============================================================================

// Get 读取键的值。
// 键不存在或已逻辑过期时记一次未命中并返回 (nil, false)；
// 已过期的条目被惰性删除。命中时刷新访问元数据。
func (c *Cache) Get(key string) (any, bool) {
	if c.destroyed.Load() {
		return nil, false
	}
	c.runBeforeGet(key)

	var events []xevent.Event
	c.mu.Lock()
	now := c.now()
	e, ok := c.entries[key]
	switch {
	case !ok:
		c.stats.RecordMiss()
		events = append(events, xevent.Event{Kind: xevent.KindMiss, Key: key, At: now})
		c.mu.Unlock()
		c.publish(events)
		return nil, false

	case xentry.IsExpired(*e, now):
		c.removeLocked(key, xevent.ReasonExpired, true, now, &events)
		c.stats.RecordMiss()
		events = append(events, xevent.Event{Kind: xevent.KindMiss, Key: key, At: now})
		c.mu.Unlock()
		c.publish(events)
		return nil, false
	}

	updated := xentry.RecordAccess(*e, now)
	c.entries[key] = &updated
	c.policy.OnAccess(&updated)
	c.stats.RecordHit()
	value := updated.Value
	events = append(events, xevent.Event{Kind: xevent.KindHit, Key: key, Value: value, At: now})
	c.mu.Unlock()
	c.publish(events)

	return c.runAfterGet(key, value), true
}

// GetOrDefault 读取键的值，不存在或已过期时返回 def。
func (c *Cache) GetOrDefault(key string, def any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Peek 读取键的值但不刷新访问元数据，也不计入统计。
// 过期判定照常生效，但不触发惰性删除。
func (c *Cache) Peek(key string) (any, bool) {
	if c.destroyed.Load() {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, c.now()) {
		return nil, false
	}
	return e.Value, true
}

// Has 报告键是否存活。不刷新访问元数据，不计入统计，不触发惰性删除。
func (c *Cache) Has(key string) bool {
	_, ok := c.Peek(key)
	return ok
}

// Set 写入键值。
// 空键返回 ErrEmptyKey，任何变更发生前即拒绝。
// 插入新键且超出容量时，先咨询活动策略并淘汰其选中的键
// （每次淘汰发布各自的 delete+evict 事件），再写入新条目。
// 配置了内存上限时，额外按最久未访问顺序淘汰至投影占用合规，
// 与活动策略无关。
//
// BeforeSet/AfterSet 逐插件严格配对：每个插件的 AfterSet 在它
// 自己改写的值落库之后、下一个插件的 BeforeSet 之前触发。
// 统计与 set 事件只在首个落库阶段记录一次（同一次逻辑写入）。
func (c *Cache) Set(key string, value any, opts ...SetOption) error {
	if c.destroyed.Load() {
		return ErrDestroyed
	}
	if key == "" {
		return ErrEmptyKey
	}

	so := applySetOptions(opts)
	if !c.hasSetHooks() {
		c.setValue(key, value, &so, true)
		return nil
	}

	stored := false
	for i, p := range c.opts.Plugins {
		if p == nil || (p.BeforeSet == nil && p.AfterSet == nil) {
			continue
		}
		if p.BeforeSet != nil {
			rewritten, err := p.BeforeSet(key, value, &so)
			if err != nil {
				// 首个阶段的拒绝不发生任何变更；链中途的拒绝
				// 无法撤销此前阶段已落库的值（非事务语义）。
				return fmt.Errorf("%w: %s: %w", ErrRejectedByPlugin, c.pluginName(i), err)
			}
			value = rewritten
		}
		c.setValue(key, value, &so, !stored)
		stored = true
		if p.AfterSet != nil {
			p.AfterSet(key, value)
		}
	}
	return nil
}

// setValue 执行一个落库阶段。initial 为 true 走完整写入路径；
// 为 false 时仅用插件链后续阶段改写的值细化已落库的条目。
func (c *Cache) setValue(key string, value any, so *SetOptions, initial bool) {
	var events []xevent.Event
	c.mu.Lock()
	now := c.now()
	if initial {
		c.storeLocked(key, value, so, now, &events)
	} else {
		c.refineLocked(key, value, &events)
	}
	c.mu.Unlock()
	c.publish(events)
}

// storeLocked 完整写入：处理过期旧条目、容量与内存淘汰、
// 索引与统计，并收集 set 事件。
func (c *Cache) storeLocked(key string, value any, so *SetOptions, now time.Time, events *[]xevent.Event) {
	defaults := c.defaults()
	entryOpts := xentry.Options{TTL: so.TTL, Stale: so.Stale, Tags: so.Tags, Metadata: so.Metadata}

	existing, exists := c.entries[key]
	if exists && xentry.IsExpired(*existing, now) {
		// 已过期的旧条目视为不存在：先移除，再按新键插入。
		c.removeLocked(key, xevent.ReasonExpired, true, now, events)
		c.stats.RecordExpiration()
		existing, exists = nil, false
	}

	var e xentry.Entry
	if exists {
		c.memory -= existing.Size
		base := *existing
		if so.ReplaceTags {
			base.Tags = nil
		}
		e = xentry.Update(base, value, entryOpts, defaults, now)
	} else {
		if len(c.entries)+1 > c.capacity {
			c.evictForCapacityLocked(now, events)
		}
		e = xentry.New(key, value, entryOpts, defaults, now)
	}

	if c.opts.MemoryLimit > 0 {
		c.evictForMemoryLocked(e.Size, key, events)
	}

	c.entries[key] = &e
	c.index.Set(key, e.Tags)
	c.memory += e.Size
	c.policy.OnSet(&e)
	c.stats.RecordSet()
	*events = append(*events, xevent.Event{Kind: xevent.KindSet, Key: key, Value: e.Value, At: now})
}

// refineLocked 用插件链后续阶段改写的值替换已落库条目的值。
// 属于同一次逻辑写入：不刷新时间戳，不重复计数，不重复发事件。
func (c *Cache) refineLocked(key string, value any, events *[]xevent.Event) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	c.memory -= e.Size
	updated := *e
	updated.Value = value
	updated.Size = xentry.EstimateSize(key, value)
	if c.opts.MemoryLimit > 0 {
		c.evictForMemoryLocked(updated.Size, key, events)
	}
	c.entries[key] = &updated
	c.memory += updated.Size
}

// Delete 删除键，返回键是否存在。
// 插件的 BeforeDelete 返回 false 时删除被否决，返回 false（非错误）。
func (c *Cache) Delete(key string) bool {
	if c.destroyed.Load() {
		return false
	}
	if !c.runBeforeDelete(key) {
		return false
	}

	var events []xevent.Event
	c.mu.Lock()
	now := c.now()
	existed := c.removeLocked(key, xevent.ReasonExplicit, false, now, &events)
	if existed {
		c.stats.RecordDelete()
	}
	c.mu.Unlock()
	c.publish(events)

	if existed {
		c.runAfterDelete(key)
	}
	return existed
}

// Clear 清空全部条目，发布一条携带移除数量的 clear 事件。
func (c *Cache) Clear() {
	if c.destroyed.Load() {
		return
	}
	c.mu.Lock()
	now := c.now()
	count := len(c.entries)
	c.entries = make(map[string]*xentry.Entry)
	c.index.Clear()
	c.memory = 0
	c.mu.Unlock()

	c.publish([]xevent.Event{{Kind: xevent.KindClear, Count: count, At: now}})
}

// =============================================================================
// 枚举
// =============================================================================

// Keys 返回全部存活键，升序。
func (c *Cache) Keys() []string {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if !xentry.IsExpired(*e, now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Entries 返回全部存活条目的副本，按键升序。
func (c *Cache) Entries() []xentry.Entry {
	if c.destroyed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	out := make([]xentry.Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if !xentry.IsExpired(*e, now) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ForEach 按键升序遍历存活条目，fn 返回 false 时提前终止。
// fn 在锁外调用，遍历的是快照。
func (c *Cache) ForEach(fn func(key string, value any) bool) {
	if fn == nil {
		return
	}
	for _, e := range c.Entries() {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Len 返回当前存活条目数。
func (c *Cache) Len() int {
	if c.destroyed.Load() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if !xentry.IsExpired(*e, now) {
			n++
		}
	}
	return n
}

// Capacity 返回当前容量上限。
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// MemoryUsage 返回当前近似内存占用（字节）。
func (c *Cache) MemoryUsage() int64 {
	if c.destroyed.Load() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}

// =============================================================================
// 统计与订阅
// =============================================================================

// Stats 返回计数器快照。
func (c *Cache) Stats() xstats.Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Counters()
}

// HitRate 返回当前命中率。
func (c *Cache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.HitRate()
}

// StatsSnapshot 扫描存活条目集，返回全量统计快照。
func (c *Cache) StatsSnapshot() xstats.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	live := make([]*xentry.Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if !xentry.IsExpired(*e, now) {
			live = append(live, e)
		}
	}
	return c.stats.Snapshot(live, now)
}

// ResetStats 清零计数器并重启运行时钟，不触碰存储的条目。
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Reset(c.now())
}

// Subscribe 订阅指定类型的生命周期事件。
func (c *Cache) Subscribe(kind xevent.Kind, handler xevent.Handler) xevent.Subscription {
	return c.notifier.Subscribe(kind, handler)
}

// SubscribeOnce 订阅一次性事件，首次投递后自动注销。
func (c *Cache) SubscribeOnce(kind xevent.Kind, handler xevent.Handler) xevent.Subscription {
	return c.notifier.SubscribeOnce(kind, handler)
}

// =============================================================================
// 生命周期
// =============================================================================

// Destroy 销毁缓存：停止后台清理，等待在途的后台刷新收尾，
// 清空全部状态并注销所有订阅。
// 首次调用返回 nil；之后的任何操作（包括再次 Destroy）返回 ErrDestroyed。
func (c *Cache) Destroy() error {
	if !c.destroyed.CompareAndSwap(false, true) {
		return ErrDestroyed
	}

	if c.stop != nil {
		close(c.stop)
		<-c.sweepDone
	}
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	c.reval.Wait()

	for _, p := range c.opts.Plugins {
		if p != nil && p.OnDestroy != nil {
			p.OnDestroy()
		}
	}

	c.mu.Lock()
	c.entries = make(map[string]*xentry.Entry)
	c.index.Clear()
	c.memory = 0
	c.mu.Unlock()

	c.notifier.Close()
	return nil
}

// =============================================================================
// 内部实现
// =============================================================================

func (c *Cache) defaults() xentry.Defaults {
	return xentry.Defaults{TTL: c.opts.DefaultTTL, Stale: c.opts.DefaultStale}
}

// snapshotLocked 返回全部条目的只读快照（含已过期条目，策略需要看到它们）。
func (c *Cache) snapshotLocked() []*xentry.Entry {
	out := make([]*xentry.Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// removeLocked 从存储移除键并清理标签索引，收集对应事件。
// emitExpire 为 true 时额外发布 expire 事件（惰性过期与显式 Expire）。
// 统计计数由调用方按语义自行记录。
func (c *Cache) removeLocked(key string, reason xevent.Reason, emitExpire bool, now time.Time, events *[]xevent.Event) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.index.RemoveKey(key)
	c.memory -= e.Size

	*events = append(*events, xevent.Event{Kind: xevent.KindDelete, Key: key, Value: e.Value, Reason: reason, At: now})
	if reason == xevent.ReasonEvicted {
		*events = append(*events, xevent.Event{Kind: xevent.KindEvict, Key: key, Value: e.Value, At: now})
	}
	if emitExpire {
		*events = append(*events, xevent.Event{Kind: xevent.KindExpire, Key: key, Value: e.Value, At: now})
	}
	return true
}

// evictForCapacityLocked 咨询活动策略并移除其选中的键。
// 选中的键已过期时按过期计数（ttl/swr 策略的常态），否则按淘汰计数。
func (c *Cache) evictForCapacityLocked(now time.Time, events *[]xevent.Event) {
	pctx := xpolicy.Context{
		Now:           now,
		CurrentCount:  len(c.entries),
		Capacity:      c.capacity,
		CurrentMemory: c.memory,
		MemoryLimit:   c.opts.MemoryLimit,
	}
	victims := c.policy.Victims(c.snapshotLocked(), c.capacity, pctx)
	for _, k := range victims {
		e, ok := c.entries[k]
		if !ok {
			continue
		}
		if xentry.IsExpired(*e, now) {
			if c.removeLocked(k, xevent.ReasonExpired, true, now, events) {
				c.stats.RecordExpiration()
			}
			continue
		}
		if c.removeLocked(k, xevent.ReasonEvicted, false, now, events) {
			c.stats.RecordEviction()
		}
	}
}

// evictForMemoryLocked 按最久未访问顺序淘汰，直至投影占用不超过内存上限。
// 与活动策略无关；excludeKey（正在写入的键）不参与淘汰。
func (c *Cache) evictForMemoryLocked(incomingSize int64, excludeKey string, events *[]xevent.Event) {
	limit := c.opts.MemoryLimit
	for c.memory+incomingSize > limit {
		var victim *xentry.Entry
		for _, e := range c.entries {
			if e.Key == excludeKey {
				continue
			}
			if victim == nil ||
				e.AccessedAt.Before(victim.AccessedAt) ||
				(e.AccessedAt.Equal(victim.AccessedAt) && e.Key < victim.Key) {
				victim = e
			}
		}
		if victim == nil {
			return
		}
		if c.removeLocked(victim.Key, xevent.ReasonEvicted, false, c.now(), events) {
			c.stats.RecordEviction()
		}
	}
}

// publish 在锁外按收集顺序发布事件。
// 事件在触发操作的调用栈上同步投递；在锁外发布
// 使处理器可以安全地回调引擎（但仍应避免耗时操作）。
func (c *Cache) publish(events []xevent.Event) {
	for _, e := range events {
		c.notifier.Publish(e)
	}
}
