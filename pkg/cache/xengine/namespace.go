package xengine

import (
	"context"
	"strings"
	"time"
)

// Namespace 是共享同一引擎的带前缀视图：所有键映射为 <name>:<key>。
// 命名空间之间只是键前缀的约定，容量、策略、统计、事件都是全局的。
// 统计快照按首个冒号切分键来归集命名空间计数，与本视图的映射一致。
type Namespace struct {
	cache  *Cache
	name   string
	prefix string
}

// Namespace 返回指定名称的命名空间视图。名称本身不应包含冒号。
func (c *Cache) Namespace(name string) *Namespace {
	return &Namespace{cache: c, name: name, prefix: name + ":"}
}

// Name 返回命名空间名称。
func (n *Namespace) Name() string { return n.name }

// Key 返回键在底层引擎中的完整形式。
func (n *Namespace) Key(key string) string { return n.prefix + key }

// Get 读取命名空间内的键。
func (n *Namespace) Get(key string) (any, bool) {
	return n.cache.Get(n.Key(key))
}

// GetOrDefault 读取命名空间内的键，不存在时返回 def。
func (n *Namespace) GetOrDefault(key string, def any) any {
	return n.cache.GetOrDefault(n.Key(key), def)
}

// Set 写入命名空间内的键。
func (n *Namespace) Set(key string, value any, opts ...SetOption) error {
	if key == "" {
		return ErrEmptyKey
	}
	return n.cache.Set(n.Key(key), value, opts...)
}

// Delete 删除命名空间内的键。
func (n *Namespace) Delete(key string) bool {
	return n.cache.Delete(n.Key(key))
}

// Has 报告命名空间内的键是否存活。
func (n *Namespace) Has(key string) bool {
	return n.cache.Has(n.Key(key))
}

// GetTTL 返回命名空间内键的剩余存活时长。
func (n *Namespace) GetTTL(key string) (time.Duration, bool) {
	return n.cache.GetTTL(n.Key(key))
}

// SetTTL 重设命名空间内键的 TTL。
func (n *Namespace) SetTTL(key string, ttl time.Duration) bool {
	return n.cache.SetTTL(n.Key(key), ttl)
}

// Touch 滑动刷新命名空间内键的过期窗口。
func (n *Namespace) Touch(key string) bool {
	return n.cache.Touch(n.Key(key))
}

// Expire 立即让命名空间内的键过期。
func (n *Namespace) Expire(key string) bool {
	return n.cache.Expire(n.Key(key))
}

// GetOrSet 在命名空间内读取或回源。
func (n *Namespace) GetOrSet(ctx context.Context, key string, factory Factory, opts ...SetOption) (any, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return n.cache.GetOrSet(ctx, n.Key(key), factory, opts...)
}

// Keys 返回命名空间内的全部存活键（去掉前缀），升序。
func (n *Namespace) Keys() []string {
	var out []string
	for _, k := range n.cache.Keys() {
		if strings.HasPrefix(k, n.prefix) {
			out = append(out, strings.TrimPrefix(k, n.prefix))
		}
	}
	return out
}

// Len 返回命名空间内的存活条目数。
func (n *Namespace) Len() int {
	count := 0
	for _, k := range n.cache.Keys() {
		if strings.HasPrefix(k, n.prefix) {
			count++
		}
	}
	return count
}

// Clear 删除命名空间内的全部键，返回删除数量。
// 逐键删除：每个键照常发布 delete 事件并经过插件钩子。
func (n *Namespace) Clear() int {
	removed := 0
	for _, k := range n.cache.Keys() {
		if strings.HasPrefix(k, n.prefix) && n.cache.Delete(k) {
			removed++
		}
	}
	return removed
}
