package xpolicy

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
)

// 内置策略名称。
const (
	LRU  = "lru"
	LFU  = "lfu"
	FIFO = "fifo"
	TTL  = "ttl"
	SWR  = "swr"
)

// Context 是一次淘汰决策的瞬时上下文，不被持久化。
type Context struct {
	// Now 决策时刻。
	Now time.Time

	// CurrentCount 当前条目数（不含待插入的新条目）。
	CurrentCount int

	// Capacity 条目数上限。
	Capacity int

	// CurrentMemory 当前近似内存占用（字节）。
	CurrentMemory int64

	// MemoryLimit 内存上限（字节），0 表示未配置。
	MemoryLimit int64
}

// Policy 定义淘汰策略契约。
// Victims 只在插入会超出容量时被调用，返回应被移除的键。
// OnAccess/OnSet 供需要额外簿记的策略使用，内置策略均为空操作。
type Policy interface {
	// Name 返回策略名称。
	Name() string

	// Victims 从存活条目中选出应被淘汰的键。
	// entries 是只读快照，策略不得修改其中的条目。
	Victims(entries []*xentry.Entry, capacity int, pc Context) []string

	// OnAccess 在条目被成功读取后调用。
	OnAccess(e *xentry.Entry)

	// OnSet 在条目被写入后调用。
	OnSet(e *xentry.Entry)
}

// Func 从单个选取函数适配出一个无状态策略。
type Func struct {
	// PolicyName 策略名称，空时显示为 "custom"。
	PolicyName string

	// Pick 选取函数，语义与 Policy.Victims 相同。
	Pick func(entries []*xentry.Entry, capacity int, pc Context) []string
}

// Name 实现 Policy。
func (f Func) Name() string {
	if f.PolicyName == "" {
		return "custom"
	}
	return f.PolicyName
}

// Victims 实现 Policy。Pick 为 nil 时返回空集。
func (f Func) Victims(entries []*xentry.Entry, capacity int, pc Context) []string {
	if f.Pick == nil {
		return nil
	}
	return f.Pick(entries, capacity, pc)
}

// OnAccess 实现 Policy，空操作。
func (f Func) OnAccess(*xentry.Entry) {}

// OnSet 实现 Policy，空操作。
func (f Func) OnSet(*xentry.Entry) {}

// =============================================================================
// 注册表
// =============================================================================

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Policy{
		LRU:  func() Policy { return lruPolicy{} },
		LFU:  func() Policy { return lfuPolicy{} },
		FIFO: func() Policy { return fifoPolicy{} },
		TTL:  func() Policy { return ttlPolicy{} },
		SWR:  func() Policy { return swrPolicy{} },
	}
)

// Register 按名称注册自定义策略工厂。
// 覆盖内置名称是允许的，但通常没有好理由这么做。
func Register(name string, factory func() Policy) error {
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return ErrNilFactory
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
	return nil
}

// ForName 按名称构造策略实例。
func ForName(name string) (Policy, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return factory(), nil
}

// Quota 返回一次淘汰决策的配额：max(1, count − capacity + 1)。
func Quota(count, capacity int) int {
	n := count - capacity + 1
	if n < 1 {
		n = 1
	}
	return n
}

// rank 按给定的比较函数排序并截取前 quota 个键。
// less 返回负数表示 a 先被淘汰；0 时按键名升序打破平手。
func rank(entries []*xentry.Entry, quota int, less func(a, b *xentry.Entry) int) []string {
	if quota <= 0 || len(entries) == 0 {
		return nil
	}
	sorted := make([]*xentry.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := less(sorted[i], sorted[j]); c != 0 {
			return c < 0
		}
		return sorted[i].Key < sorted[j].Key
	})
	if quota > len(sorted) {
		quota = len(sorted)
	}
	keys := make([]string, 0, quota)
	for _, e := range sorted[:quota] {
		keys = append(keys, e.Key)
	}
	return keys
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
