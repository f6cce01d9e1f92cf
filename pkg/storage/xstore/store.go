package xstore

import (
	"context"
	"time"
)

// Store 定义外部字节存储的统一契约。
// 值是编码后的字节串，由调用方（通常是 Mirror 或加载流程）负责编解码。
//
// 与进程内引擎不同，这里的实现都可能跨进程/跨网络，
// 所有操作都携带 context.Context 并返回显式错误。
type Store interface {
	// Get 读取键的值。键不存在时返回 ErrNotFound。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入键值。ttl ≤ 0 表示不过期（后端支持的范围内）。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除键。键不存在时不报错。
	Delete(ctx context.Context, key string) error

	// Has 报告键是否存在。
	Has(ctx context.Context, key string) (bool, error)

	// Keys 枚举全部键，升序。
	Keys(ctx context.Context) ([]string, error)

	// Clear 清空全部键。
	Clear(ctx context.Context) error

	// Len 返回当前键数量。
	Len(ctx context.Context) (int, error)

	// Close 释放底层资源。关闭后的操作返回 ErrClosed。
	Close() error
}
