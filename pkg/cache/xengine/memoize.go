package xengine

import (
	"context"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MemoFunc 是可被记忆化的函数：按字符串参数生产值。
type MemoFunc func(ctx context.Context, args ...string) (any, error)

// MemoKey 计算参数列表对应的缓存键。
// 参数以不可见分隔符拼接后取 xxhash，避免 ("ab","c") 与 ("a","bc")
// 的拼接歧义；键带 memo: 前缀，与普通键共存于同一命名空间。
func MemoKey(args ...string) string {
	h := xxhash.New()
	for i, a := range args {
		if i > 0 {
			_, _ = h.WriteString("\x1f")
		}
		_, _ = h.WriteString(a)
	}
	var b strings.Builder
	b.WriteString("memo:")
	b.WriteString(strconv.FormatUint(h.Sum64(), 16))
	return b.String()
}

// Memoize 包装 fn 为记忆化版本：相同参数的重复调用命中缓存，
// 未命中时回源并按给定写入选项缓存结果。
// 并发的同参调用经 GetOrSet 的 singleflight 合并为一次执行。
// fn 为 nil 时返回 ErrNilFn。
//
// 配合 WithStale 使用时，记忆化结果同样享受 stale-while-revalidate：
// 陈旧命中立即返回旧值并在后台重算。
func (c *Cache) Memoize(fn MemoFunc, opts ...SetOption) (MemoFunc, error) {
	if fn == nil {
		return nil, ErrNilFn
	}
	return func(ctx context.Context, args ...string) (any, error) {
		return c.GetOrSet(ctx, MemoKey(args...), func(ctx context.Context) (any, error) {
			return fn(ctx, args...)
		}, opts...)
	}, nil
}

// InvalidateMemo 删除一组参数对应的记忆化结果，返回是否存在。
func (c *Cache) InvalidateMemo(args ...string) bool {
	return c.Delete(MemoKey(args...))
}
