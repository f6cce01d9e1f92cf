package xengine

import "context"

// GetMany 批量读取，返回命中的键值对。未命中的键不出现在结果中。
// 每个键的统计与事件语义与单键 Get 一致。
func (c *Cache) GetMany(keys []string) map[string]any {
	if c.destroyed.Load() {
		return nil
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := c.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// SetMany 批量写入，写入选项对每个键生效。
// 任一键失败立即返回错误，已写入的键保持生效（非事务语义）。
func (c *Cache) SetMany(values map[string]any, opts ...SetOption) error {
	if c.destroyed.Load() {
		return ErrDestroyed
	}
	for k, v := range values {
		if err := c.Set(k, v, opts...); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany 批量删除，返回每个键是否存在并被实际删除。
// 语义与逐键 Delete 一致：被插件否决的键为 false。
func (c *Cache) DeleteMany(keys []string) map[string]bool {
	if c.destroyed.Load() {
		return nil
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = c.Delete(k)
	}
	return out
}

// HasMany 批量探测键的存活状态。
// 与 Has 一致：不刷新访问元数据，不计入统计。
func (c *Cache) HasMany(keys []string) map[string]bool {
	if c.destroyed.Load() {
		return nil
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = c.Has(k)
	}
	return out
}

// GetOrSetMany 批量读取，对未命中的键调用 factory 逐个回源。
// factory 收到缺失的键；任一键回源失败立即返回错误，
// 已取得的结果随错误一并返回。
func (c *Cache) GetOrSetMany(ctx context.Context, keys []string, factory func(ctx context.Context, key string) (any, error), opts ...SetOption) (map[string]any, error) {
	if c.destroyed.Load() {
		return nil, ErrDestroyed
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := c.GetOrSet(ctx, k, func(ctx context.Context) (any, error) {
			return factory(ctx, k)
		}, opts...)
		if err != nil {
			return out, err
		}
		out[k] = v
	}
	return out, nil
}
