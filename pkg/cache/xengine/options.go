package xengine

import (
	"log/slog"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xpolicy"
)

// DefaultCapacity 默认条目数上限。
const DefaultCapacity = 1000

// Options 定义缓存引擎的构造配置。
type Options struct {
	// Capacity 条目数上限，必须 ≥ 1。默认 1000。
	Capacity int

	// Policy 淘汰策略实例。与 PolicyName 同时设置时本字段优先。
	// 两者皆空时使用 lru：默认策略是显式的，不依赖省略语义。
	Policy xpolicy.Policy

	// PolicyName 按名称选择策略（内置或已注册的自定义策略）。
	PolicyName string

	// DefaultTTL 缓存级默认 TTL。0 表示默认不过期。
	// 写入时显式传入 0 会抑制此默认值（零值与未设置语义不同）。
	DefaultTTL time.Duration

	// DefaultStale 缓存级默认陈旧时长。0 表示默认无陈旧窗口。
	DefaultStale time.Duration

	// MemoryLimit 近似内存上限（字节）。0 表示不启用。
	// 超限时按最久未访问顺序额外淘汰，与活动策略无关。
	MemoryLimit int64

	// PruneInterval 周期清理间隔。0 表示完全禁用后台清理。
	PruneInterval time.Duration

	// PruneSchedule 周期清理的 cron 表达式（标准五段式）。
	// 与 PruneInterval 互为替代；两者同时设置时都会生效。
	PruneSchedule string

	// Logger 用于上报被吞掉的后台刷新错误与处理器 panic。
	// 默认 slog.Default()，传 nil 禁用日志输出。
	Logger *slog.Logger

	// Plugins 值变换插件，按注册顺序执行。
	Plugins []*Plugin

	// DisableStats 关闭操作计数。规模类数据（条目数、内存占用、
	// 快照的派生字段）不受影响。
	DisableStats bool

	// OnRevalidationError 后台刷新失败的观测钩子。
	// 后台路径的错误会被吞掉以保留最后已知的陈旧值，
	// 此钩子让这类错误对测试与监控可见。
	OnRevalidationError func(key string, err error)
}

// Option 定义配置缓存引擎的函数类型。
type Option func(*Options)

// defaultOptions 返回默认配置。
func defaultOptions() *Options {
	return &Options{
		Capacity:   DefaultCapacity,
		PolicyName: xpolicy.LRU,
		Logger:     slog.Default(),
	}
}

// WithCapacity 设置条目数上限。
func WithCapacity(n int) Option {
	return func(o *Options) { o.Capacity = n }
}

// WithPolicy 设置淘汰策略实例，优先于 WithPolicyName。
func WithPolicy(p xpolicy.Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithPolicyName 按名称选择淘汰策略。
func WithPolicyName(name string) Option {
	return func(o *Options) { o.PolicyName = name }
}

// WithDefaultTTL 设置缓存级默认 TTL。
func WithDefaultTTL(d time.Duration) Option {
	return func(o *Options) { o.DefaultTTL = d }
}

// WithDefaultStale 设置缓存级默认陈旧时长。
func WithDefaultStale(d time.Duration) Option {
	return func(o *Options) { o.DefaultStale = d }
}

// WithMemoryLimit 设置近似内存上限（字节）。
func WithMemoryLimit(bytes int64) Option {
	return func(o *Options) { o.MemoryLimit = bytes }
}

// WithPruneInterval 设置周期清理间隔，0 禁用。
func WithPruneInterval(d time.Duration) Option {
	return func(o *Options) { o.PruneInterval = d }
}

// WithPruneSchedule 设置周期清理的 cron 表达式。
func WithPruneSchedule(spec string) Option {
	return func(o *Options) { o.PruneSchedule = spec }
}

// WithLogger 设置日志输出，传 nil 禁用。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithPlugins 追加值变换插件。
func WithPlugins(plugins ...*Plugin) Option {
	return func(o *Options) { o.Plugins = append(o.Plugins, plugins...) }
}

// WithStatsDisabled 关闭操作计数。
func WithStatsDisabled() Option {
	return func(o *Options) { o.DisableStats = true }
}

// WithRevalidationErrorHook 设置后台刷新失败的观测钩子。
func WithRevalidationErrorHook(hook func(key string, err error)) Option {
	return func(o *Options) { o.OnRevalidationError = hook }
}

// =============================================================================
// 单次写入选项
// =============================================================================

// SetOptions 定义单次写入的选项。
type SetOptions struct {
	// TTL 本次写入的显式 TTL。nil 表示回落（条目自身 TTL 或缓存默认值）；
	// 指向 0 表示本条目不过期并抑制默认值。
	TTL *time.Duration

	// Stale 本次写入的显式陈旧时长，解析规则同 TTL。
	Stale *time.Duration

	// Tags 本次写入的标签。默认与已有标签做并集。
	Tags []string

	// ReplaceTags 为 true 时用 Tags 整体替换已有标签，而非合并。
	ReplaceTags bool

	// Metadata 合并进条目的元数据。
	Metadata map[string]any

	// ForceRefresh 仅对 GetOrSet 生效：跳过缓存读取，强制回源。
	ForceRefresh bool
}

// SetOption 定义单次写入的选项函数类型。
type SetOption func(*SetOptions)

// WithTTL 设置本次写入的 TTL。
// 传 0 表示本条目不过期，并抑制缓存级默认 TTL；
// 这与不调用本选项（回落默认值）是两种不同语义。
func WithTTL(d time.Duration) SetOption {
	return func(o *SetOptions) { o.TTL = &d }
}

// WithStale 设置本次写入的陈旧时长。
func WithStale(d time.Duration) SetOption {
	return func(o *SetOptions) { o.Stale = &d }
}

// WithTags 设置本次写入附加的标签（与已有标签合并）。
func WithTags(tags ...string) SetOption {
	return func(o *SetOptions) { o.Tags = append(o.Tags, tags...) }
}

// WithReplaceTags 用给定标签整体替换已有标签。
func WithReplaceTags(tags ...string) SetOption {
	return func(o *SetOptions) {
		o.Tags = tags
		o.ReplaceTags = true
	}
}

// WithMetadata 合并元数据。
func WithMetadata(m map[string]any) SetOption {
	return func(o *SetOptions) { o.Metadata = m }
}

// WithForceRefresh 让 GetOrSet 跳过缓存读取，强制回源。
func WithForceRefresh() SetOption {
	return func(o *SetOptions) { o.ForceRefresh = true }
}

func applySetOptions(opts []SetOption) SetOptions {
	var so SetOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	return so
}
