// Package xpolicy 定义淘汰策略抽象及五种内置实现。
//
// 策略只在插入超出容量时被引擎咨询，返回应被移除的键集合；
// 它不拥有条目存储，也不维护可变的外部状态（内置策略的
// OnAccess/OnSet 均为空操作，仅为需要额外簿记的自定义策略保留）。
//
// # 内置策略
//
//   - lru：按最近访问时间升序淘汰（最久未访问先出）
//   - lfu：按访问次数升序淘汰，次数相同时最久未访问先出
//   - fifo：按创建时间升序淘汰（最早写入先出）
//   - ttl：只移除已过期条目，完全忽略容量
//   - swr：已过期条目优先，不足时按 lru 顺序补足配额
//
// 淘汰配额恒为 max(1, 当前数量 − 容量 + 1)：即使插入前数量恰好
// 等于容量，也至少淘汰一个以容纳新条目。ttl 策略是唯一的例外，
// 它可能返回少于配额甚至空集。
//
// 所有排序的最终平手按键名升序打破，保证结果确定。
//
// # 自定义策略
//
// 通过 Register 按名称注册，或直接向引擎传入任意 Policy 实现。
// 无状态的策略可用 Func 适配器从单个函数构造。
package xpolicy
