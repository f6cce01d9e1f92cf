// Package cache 提供进程内对象缓存相关的子包。
//
// 子包列表：
//   - xengine: 缓存引擎，聚合各子包对外提供完整操作面
//   - xentry: 条目模型与生命周期计算
//   - xpolicy: 淘汰策略抽象与内置策略（lru/lfu/fifo/ttl/swr）
//   - xtag: 标签倒排索引
//   - xstats: 操作计数与快照统计
//   - xevent: 同步事件通知
//   - xdump: 持久化快照的序列化格式
//
// 设计原则：
//   - 引擎持有唯一的互斥锁，子包自身不做并发保护
//   - 事件在锁外派发，订阅方可安全回调缓存
package cache
