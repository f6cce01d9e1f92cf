package xplug

import (
	"errors"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

// ErrReadOnly 表示缓存处于只读模式，写入被拒绝。
var ErrReadOnly = errors.New("xplug: cache is read-only")

// ReadOnly 构造只读插件：拒绝所有写入并否决所有删除。
// 配合 Restore 预装数据使用，把缓存冻结为查找表。
func ReadOnly() *xengine.Plugin {
	return &xengine.Plugin{
		Name: "readonly",
		BeforeSet: func(string, any, *xengine.SetOptions) (any, error) {
			return nil, ErrReadOnly
		},
		BeforeDelete: func(string) bool { return false },
	}
}
