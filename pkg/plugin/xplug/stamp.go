package xplug

import (
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

// StampKey 写入时间戳在条目元数据中的键名。
const StampKey = "stamped_at"

// Stamp 构造打戳插件：每次写入在条目元数据里记录 RFC3339 时间戳，
// 供审计与排查"这个值是什么时候进来的"。
// 额外的 extra 键值对随时间戳一并并入元数据。
func Stamp(extra map[string]any) *xengine.Plugin {
	return &xengine.Plugin{
		Name: "stamp",
		BeforeSet: func(_ string, value any, opts *xengine.SetOptions) (any, error) {
			if opts.Metadata == nil {
				opts.Metadata = make(map[string]any, len(extra)+1)
			}
			opts.Metadata[StampKey] = time.Now().UTC().Format(time.RFC3339Nano)
			for k, v := range extra {
				opts.Metadata[k] = v
			}
			return value, nil
		},
	}
}
