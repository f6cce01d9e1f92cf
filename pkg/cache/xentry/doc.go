// Package xentry 定义缓存条目及其生命周期的纯函数。
//
// Entry 是缓存引擎的基础数据单元，携带值、时间戳、访问计数、
// TTL/过期/陈旧窗口、标签和调用方自有的元数据。
//
// # 设计理念
//
// 本包的四个生命周期操作（New、Update、Touch、RecordAccess）都是
// 纯函数：接收条目值、返回新的条目值，不做任何 I/O，也不依赖
// 全局状态。时间由调用方显式传入，便于引擎统一管理时钟。
//
// # TTL 解析规则
//
// 过期时间按以下优先级解析：
//  1. 本次调用显式传入的 TTL（Options.TTL 非 nil）
//  2. 条目自身已有的 TTL（仅 Update 时）
//  3. 缓存级默认 TTL（Defaults.TTL）
//
// 注意：显式传入 0 表示"本条目不过期"，会抑制默认 TTL；
// 不传（nil）才会回落到默认值。零值与未设置是两种不同语义。
//
// 陈旧窗口（StaleAt）按相同优先级从陈旧时长解析。
// 当派生出的 StaleAt 不早于 ExpiresAt 时，陈旧窗口被丢弃，
// 条目从新鲜直接进入过期。
package xentry
