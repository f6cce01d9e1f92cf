package xcacheconf

import (
	"fmt"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

// Config 是缓存引擎的声明式配置。
// 时长字段使用 Go duration 字符串（"30s"、"5m"），空串表示未设置。
type Config struct {
	// Capacity 条目数上限。0 表示使用引擎默认值。
	Capacity int `koanf:"capacity"`

	// Policy 淘汰策略名称（lru/lfu/fifo/ttl/swr 或已注册的自定义名）。
	// 空串表示使用引擎默认值。
	Policy string `koanf:"policy"`

	// DefaultTTL 缓存级默认 TTL。
	DefaultTTL string `koanf:"default_ttl"`

	// DefaultStale 缓存级默认陈旧时长。
	DefaultStale string `koanf:"default_stale"`

	// MemoryLimit 近似内存上限（字节）。0 表示不启用。
	MemoryLimit int64 `koanf:"memory_limit"`

	// PruneInterval 周期清理间隔。
	PruneInterval string `koanf:"prune_interval"`

	// PruneSchedule 周期清理的 cron 表达式（标准五段式）。
	PruneSchedule string `koanf:"prune_schedule"`
}

// Options 把配置转换为引擎构造选项。
// 只为显式设置的字段生成选项，未设置的交给引擎默认值；
// 时长字段解析失败返回 ErrInvalidDuration。
// 容量、策略名等取值的最终校验由 xengine.New 完成。
func (c *Config) Options() ([]xengine.Option, error) {
	var opts []xengine.Option

	if c.Capacity > 0 {
		opts = append(opts, xengine.WithCapacity(c.Capacity))
	}
	if c.Policy != "" {
		opts = append(opts, xengine.WithPolicyName(c.Policy))
	}
	if c.MemoryLimit > 0 {
		opts = append(opts, xengine.WithMemoryLimit(c.MemoryLimit))
	}
	if c.PruneSchedule != "" {
		opts = append(opts, xengine.WithPruneSchedule(c.PruneSchedule))
	}

	for _, f := range []struct {
		name  string
		value string
		opt   func(time.Duration) xengine.Option
	}{
		{"default_ttl", c.DefaultTTL, xengine.WithDefaultTTL},
		{"default_stale", c.DefaultStale, xengine.WithDefaultStale},
		{"prune_interval", c.PruneInterval, xengine.WithPruneInterval},
	} {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %w", ErrInvalidDuration, f.name, f.value, err)
		}
		opts = append(opts, f.opt(d))
	}

	return opts, nil
}

// NewCache 加载配置文件并据此构造缓存引擎。
// extra 中的选项追加在配置生成的选项之后，可覆盖配置值
// （引擎选项后者生效）。
func NewCache(path string, extra ...xengine.Option) (*xengine.Cache, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return xengine.New(append(opts, extra...)...)
}
