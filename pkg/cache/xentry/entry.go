package xentry

import (
	"encoding/json"
	"slices"
	"time"
)

// Entry 表示一个缓存条目。
// 字段均为值语义；生命周期函数返回副本，不原地修改。
type Entry struct {
	// Key 条目的唯一键。
	Key string

	// Value 缓存的载荷，对引擎不透明。
	Value any

	// CreatedAt 条目首次写入时间。
	CreatedAt time.Time

	// UpdatedAt 条目最近一次写入时间。
	UpdatedAt time.Time

	// AccessedAt 条目最近一次成功读取时间。
	AccessedAt time.Time

	// AccessCount 成功读取次数，条目存活期间单调递增。
	AccessCount int64

	// Size 条目近似占用字节数，仅用于内存上限的粗略核算。
	Size int64

	// TTL 条目存活时长。0 表示无过期。
	TTL time.Duration

	// ExpiresAt 绝对过期时间。零值表示无过期。
	// 当前时间 ≥ ExpiresAt 时条目在逻辑上已不存在。
	ExpiresAt time.Time

	// StaleAt 陈旧边界（stale-while-revalidate）。零值表示无。
	// 非零时恒早于 ExpiresAt（两者均设置的情况下）。
	StaleAt time.Time

	// Tags 条目标签集合，已去重，顺序无意义。
	Tags []string

	// Metadata 调用方/插件自有的键值包，引擎不解释其内容。
	Metadata map[string]any
}

// Options 定义单次写入的条目选项。
type Options struct {
	// TTL 本次写入的显式 TTL。
	// nil 表示未指定（回落到条目自身或缓存默认值）；
	// 指向 0 表示本条目不过期，并抑制默认 TTL。
	TTL *time.Duration

	// Stale 本次写入的显式陈旧时长，解析规则与 TTL 相同。
	Stale *time.Duration

	// Tags 本次写入附加的标签。Update 时与已有标签做并集。
	Tags []string

	// Metadata 本次写入合并进条目的元数据。
	Metadata map[string]any
}

// Defaults 定义缓存级的 TTL/陈旧默认值。
type Defaults struct {
	// TTL 默认存活时长。0 表示默认不过期。
	TTL time.Duration

	// Stale 默认陈旧时长。0 表示默认无陈旧窗口。
	Stale time.Duration
}

// New 构造一个新条目。now 由调用方传入。
func New(key string, value any, opts Options, defaults Defaults, now time.Time) Entry {
	e := Entry{
		Key:        key,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
		AccessedAt: now,
		Size:       EstimateSize(key, value),
		Tags:       dedupe(opts.Tags),
		Metadata:   cloneMetadata(opts.Metadata),
	}
	e.TTL = resolveDuration(opts.TTL, 0, defaults.TTL)
	stale := resolveDuration(opts.Stale, 0, defaults.Stale)
	e.ExpiresAt, e.StaleAt = deriveWindow(now, e.TTL, stale)
	return e
}

// Update 用新值更新已有条目：重算大小、刷新时间戳、
// 合并标签与元数据（并集，不替换），并按解析规则重建过期窗口。
// 访问计数保留。
func Update(existing Entry, value any, opts Options, defaults Defaults, now time.Time) Entry {
	e := existing
	e.Value = value
	e.UpdatedAt = now
	e.Size = EstimateSize(e.Key, value)
	e.Tags = mergeTags(existing.Tags, opts.Tags)
	e.Metadata = mergeMetadata(existing.Metadata, opts.Metadata)

	e.TTL = resolveDuration(opts.TTL, existing.TTL, defaults.TTL)
	stale := resolveDuration(opts.Stale, staleDuration(existing), defaults.Stale)
	e.ExpiresAt, e.StaleAt = deriveWindow(now, e.TTL, stale)
	return e
}

// Touch 以当前时间为基准、按条目自身的 TTL 重建过期窗口，
// 并记录一次访问。条目无 TTL 时仅记录访问。
func Touch(e Entry, now time.Time) Entry {
	e = RecordAccess(e, now)
	if e.TTL > 0 {
		e.ExpiresAt, e.StaleAt = deriveWindow(now, e.TTL, staleDuration(e))
	}
	return e
}

// RecordAccess 刷新访问时间并递增访问计数，不改变过期窗口。
func RecordAccess(e Entry, now time.Time) Entry {
	e.AccessedAt = now
	e.AccessCount++
	return e
}

// IsExpired 报告条目在 now 时刻是否已过期。
// 无 ExpiresAt 的条目永不过期。
func IsExpired(e Entry, now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// IsStale 报告条目在 now 时刻是否已进入陈旧窗口。
// 已过期的条目不算陈旧（它在逻辑上已不存在）。
func IsStale(e Entry, now time.Time) bool {
	if IsExpired(e, now) {
		return false
	}
	return !e.StaleAt.IsZero() && !now.Before(e.StaleAt)
}

// RemainingTTL 返回条目在 now 时刻的剩余存活时长。
// 无过期时间时返回 (0, false)。
func RemainingTTL(e Entry, now time.Time) (time.Duration, bool) {
	if e.ExpiresAt.IsZero() {
		return 0, false
	}
	remaining := e.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// EstimateSize 估算键值对的近似内存占用（字节）。
// 常见类型走快速路径，其余回落到 JSON 编码长度；
// 无法编码的值按 0 计。结果仅用于内存上限的粗略核算。
func EstimateSize(key string, value any) int64 {
	base := int64(len(key))
	switch v := value.(type) {
	case nil:
		return base
	case string:
		return base + int64(len(v))
	case []byte:
		return base + int64(len(v))
	case bool:
		return base + 1
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return base + 8
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return base
		}
		return base + int64(len(data))
	}
}

// resolveDuration 按 显式 > 自身 > 默认 的优先级解析时长。
// explicit 指向 0 表示显式关闭，返回 0 且不再回落。
func resolveDuration(explicit *time.Duration, own, def time.Duration) time.Duration {
	if explicit != nil {
		if *explicit < 0 {
			return 0
		}
		return *explicit
	}
	if own > 0 {
		return own
	}
	return def
}

// deriveWindow 从 now 和解析后的时长计算 (expiresAt, staleAt)。
// 派生出的 staleAt 不早于 expiresAt 时被丢弃，保持严格早于的不变量。
func deriveWindow(now time.Time, ttl, stale time.Duration) (expiresAt, staleAt time.Time) {
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	if stale > 0 {
		staleAt = now.Add(stale)
		if !expiresAt.IsZero() && !staleAt.Before(expiresAt) {
			staleAt = time.Time{}
		}
	}
	return expiresAt, staleAt
}

// staleDuration 反推条目当前的陈旧时长（相对其最近写入时间）。
// 用于 Update/Touch 在未显式传入时保留原有窗口比例。
func staleDuration(e Entry) time.Duration {
	if e.StaleAt.IsZero() {
		return 0
	}
	d := e.StaleAt.Sub(e.UpdatedAt)
	if d < 0 {
		return 0
	}
	return d
}

func dedupe(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func mergeTags(existing, added []string) []string {
	if len(added) == 0 {
		return existing
	}
	return dedupe(append(slices.Clone(existing), added...))
}

func cloneMetadata(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeMetadata(existing, added map[string]any) map[string]any {
	if len(added) == 0 {
		return existing
	}
	out := cloneMetadata(existing)
	if out == nil {
		out = make(map[string]any, len(added))
	}
	for k, v := range added {
		out[k] = v
	}
	return out
}
