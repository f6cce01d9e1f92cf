// Package xevent 提供缓存生命周期事件的同步发布/订阅机制。
//
// 八种事件：hit、miss、set、delete、expire、evict、clear、prune。
// 事件投递是同步的，按订阅顺序进行；订阅返回可注销的句柄，
// 一次性订阅在首次投递后自动注销。
//
// # 处理器隔离
//
// 处理器内部的 panic 会被捕获并通过配置的 slog.Logger 上报，
// 不中断后续处理器的投递，也不会传播到触发操作的调用方。
//
// # 处理器约束
//
// 投递发生在触发操作的调用栈上。处理器中严禁回调缓存引擎自身的
// 任何方法（可能死锁），也应避免耗时操作；需要复杂处理时，
// 应把事件转发到外部 channel 异步消费。
package xevent
