package xengine

import "fmt"

// Plugin 是值变换插件：一组全部可选的钩子，按注册顺序执行。
// 只有非 nil 的钩子会被调用。
//
// BeforeSet/AfterSet 逐插件严格配对：每个插件的 BeforeSet 改写
// 值与选项，它改写的值随即落库，然后它自己的 AfterSet 触发，
// 之后才轮到下一个插件的 BeforeSet。首个插件的 BeforeSet 返回
// 错误时写入被整体拒绝、不发生任何变更；链中途的拒绝使此前阶段
// 的值保持落库（非事务语义）。BeforeDelete 返回 false 表示否决
// 删除——这是正常的 false 结果，不是错误。
//
// BeforeSerialize/AfterDeserialize 服务于只存文本的外部后端与
// 转储：Dump 按注册顺序对每个值应用 BeforeSerialize，
// Restore 按注册顺序应用 AfterDeserialize。
type Plugin struct {
	// Name 插件名称，用于日志。
	Name string

	// OnInit 在引擎构造完成后调用，返回错误会使构造失败。
	OnInit func(c *Cache) error

	// OnDestroy 在引擎销毁时调用。
	OnDestroy func()

	// BeforeGet 在查找之前观察键。
	BeforeGet func(key string)

	// AfterGet 在命中后改写返回给调用方的值（不回写存储）。
	AfterGet func(key string, value any) any

	// BeforeSet 改写待写入的值与选项，或返回错误拒绝写入。
	BeforeSet func(key string, value any, opts *SetOptions) (any, error)

	// AfterSet 在本插件改写的值落库后、下一个插件的 BeforeSet
	// 之前观察该值。
	AfterSet func(key string, value any)

	// BeforeDelete 返回 false 否决删除。
	BeforeDelete func(key string) bool

	// AfterDelete 在删除完成后观察键。
	AfterDelete func(key string)

	// BeforeSerialize 在值进入转储/文本后端前变换它。
	BeforeSerialize func(key string, value any) (any, error)

	// AfterDeserialize 在值从转储/文本后端还原后变换它。
	AfterDeserialize func(key string, value any) (any, error)
}

// pluginName 返回用于日志的插件名，空名显示序号。
func (c *Cache) pluginName(i int) string {
	p := c.opts.Plugins[i]
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("plugin[%d]", i)
}

// runBeforeGet 依序触发 BeforeGet 钩子。
func (c *Cache) runBeforeGet(key string) {
	for _, p := range c.opts.Plugins {
		if p.BeforeGet != nil {
			p.BeforeGet(key)
		}
	}
}

// runAfterGet 依序让 AfterGet 钩子改写返回值。
func (c *Cache) runAfterGet(key string, value any) any {
	for _, p := range c.opts.Plugins {
		if p.AfterGet != nil {
			value = p.AfterGet(key, value)
		}
	}
	return value
}

// hasSetHooks 报告是否有插件声明了 BeforeSet 或 AfterSet。
// 写入路径据此选择直通或逐插件配对的多阶段落库。
func (c *Cache) hasSetHooks() bool {
	for _, p := range c.opts.Plugins {
		if p != nil && (p.BeforeSet != nil || p.AfterSet != nil) {
			return true
		}
	}
	return false
}

// runBeforeDelete 依序询问 BeforeDelete 钩子，任一返回 false 即否决。
func (c *Cache) runBeforeDelete(key string) bool {
	for _, p := range c.opts.Plugins {
		if p.BeforeDelete != nil && !p.BeforeDelete(key) {
			return false
		}
	}
	return true
}

// runAfterDelete 依序触发 AfterDelete 钩子。
func (c *Cache) runAfterDelete(key string) {
	for _, p := range c.opts.Plugins {
		if p.AfterDelete != nil {
			p.AfterDelete(key)
		}
	}
}

// runBeforeSerialize 依序让 BeforeSerialize 钩子变换值。
func (c *Cache) runBeforeSerialize(key string, value any) (any, error) {
	for i, p := range c.opts.Plugins {
		if p.BeforeSerialize == nil {
			continue
		}
		transformed, err := p.BeforeSerialize(key, value)
		if err != nil {
			return nil, fmt.Errorf("xengine: %s: serialize %q: %w", c.pluginName(i), key, err)
		}
		value = transformed
	}
	return value, nil
}

// runAfterDeserialize 依序让 AfterDeserialize 钩子还原值。
func (c *Cache) runAfterDeserialize(key string, value any) (any, error) {
	for i, p := range c.opts.Plugins {
		if p.AfterDeserialize == nil {
			continue
		}
		restored, err := p.AfterDeserialize(key, value)
		if err != nil {
			return nil, fmt.Errorf("xengine: %s: deserialize %q: %w", c.pluginName(i), key, err)
		}
		value = restored
	}
	return value, nil
}
