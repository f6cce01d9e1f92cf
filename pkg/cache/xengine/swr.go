package xengine

import (
	"context"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
)

// Factory 是回源函数：缓存未命中时生产值。
type Factory func(ctx context.Context) (any, error)

// IsStale 报告键是否处于陈旧窗口（仍可读，但应触发刷新）。
// 键不存在或已过期时返回 false（它在逻辑上已不存在，谈不上陈旧）。
func (c *Cache) IsStale(key string) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	return xentry.IsStale(*e, c.now())
}

// IsFresh 报告键是否存活且尚未进入陈旧窗口。
func (c *Cache) IsFresh(key string) bool {
	if c.destroyed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok || xentry.IsExpired(*e, now) {
		return false
	}
	return !xentry.IsStale(*e, now)
}

// GetOrSet 读取键的值，未命中时调用 factory 回源并写入缓存。
//
// 三种路径：
//   - 新鲜命中：直接返回缓存值。
//   - 陈旧命中（stale-while-revalidate）：立即返回陈旧值，
//     同时在后台异步刷新；后台刷新的错误被吞掉（保留最后已知值），
//     仅记录日志并通知 OnRevalidationError 钩子。同键至多一个刷新在飞。
//   - 未命中/已过期：前台回源，错误原样返回给调用方且不写入缓存。
//
// 并发的前台回源经 singleflight 合并：同键只有一次 factory 调用，
// 结果共享给所有等待方。WithForceRefresh 跳过缓存读取，强制回源。
func (c *Cache) GetOrSet(ctx context.Context, key string, factory Factory, opts ...SetOption) (any, error) {
	if c.destroyed.Load() {
		return nil, ErrDestroyed
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	if factory == nil {
		return nil, ErrNilFactory
	}

	so := applySetOptions(opts)
	if !so.ForceRefresh {
		if v, ok := c.Get(key); ok {
			if c.IsStale(key) {
				c.revalidate(ctx, key, factory, opts)
			}
			return v, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// 二次检查：同航班的前一位乘客可能已经回填。
		// 用 Peek 避免把合并进同一航班的调用重复计入统计。
		if !so.ForceRefresh {
			if v, ok := c.Peek(key); ok {
				return v, nil
			}
		}
		v, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(key, v, opts...); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// revalidate 在后台刷新陈旧键。同键至多一个刷新在飞，多余的触发被忽略。
// 使用与调用方脱钩的上下文：请求结束不应取消后台刷新，
// 但保留原上下文携带的值（链路追踪等）。
func (c *Cache) revalidate(ctx context.Context, key string, factory Factory, opts []SetOption) {
	c.mu.Lock()
	if _, inflight := c.revalidating[key]; inflight {
		c.mu.Unlock()
		return
	}
	c.revalidating[key] = struct{}{}
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	c.reval.Add(1)
	go func() {
		defer c.reval.Done()
		defer func() {
			c.mu.Lock()
			delete(c.revalidating, key)
			c.mu.Unlock()
		}()

		v, err := factory(detached)
		if err == nil {
			err = c.Set(key, v, opts...)
		}
		if err != nil {
			c.logError("background revalidation failed", "key", key, "error", err)
			if hook := c.opts.OnRevalidationError; hook != nil {
				hook(key, err)
			}
		}
	}()
}

func (c *Cache) logError(msg string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Error(msg, args...)
	}
}
