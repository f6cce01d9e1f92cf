package xplug

import (
	"log/slog"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

// Logging 构造访问日志插件：在 Debug 级别记录写入与删除。
// logger 为 nil 时使用 slog.Default()。
// 读路径（BeforeGet/AfterGet）刻意不记录，避免热点键刷屏；
// 需要读侧观测时订阅 hit/miss 事件更合适。
func Logging(logger *slog.Logger) *xengine.Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &xengine.Plugin{
		Name: "logging",
		AfterSet: func(key string, _ any) {
			logger.Debug("cache set", "key", key)
		},
		AfterDelete: func(key string) {
			logger.Debug("cache delete", "key", key)
		},
	}
}
