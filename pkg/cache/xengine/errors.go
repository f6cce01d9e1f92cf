package xengine

import "errors"

var (
	// ErrEmptyKey 表示键为空字符串。
	// 空键几乎总是使用错误，在任何变更发生前 fail-fast。
	ErrEmptyKey = errors.New("xengine: empty key")

	// ErrDestroyed 表示缓存已销毁，任何后续操作都会快速失败。
	ErrDestroyed = errors.New("xengine: cache destroyed")

	// ErrInvalidCapacity 表示容量配置无效（必须 ≥ 1）。
	ErrInvalidCapacity = errors.New("xengine: capacity must be at least 1")

	// ErrInvalidTTL 表示 TTL 配置无效（不允许负值）。
	ErrInvalidTTL = errors.New("xengine: TTL must not be negative")

	// ErrNilFactory 表示 GetOrSet 的工厂函数为 nil。
	ErrNilFactory = errors.New("xengine: nil factory function")

	// ErrNilFn 表示 Memoize 包装的目标函数为 nil。
	ErrNilFn = errors.New("xengine: nil function")

	// ErrNilDump 表示传入的转储为 nil。
	ErrNilDump = errors.New("xengine: nil dump")

	// ErrDumpVersion 表示转储格式版本不受支持。
	ErrDumpVersion = errors.New("xengine: unsupported dump version")

	// ErrInvalidSchedule 表示周期清理的 cron 表达式无效。
	ErrInvalidSchedule = errors.New("xengine: invalid prune schedule")

	// ErrRejectedByPlugin 表示写入被插件的 BeforeSet 钩子拒绝。
	ErrRejectedByPlugin = errors.New("xengine: set rejected by plugin")
)
