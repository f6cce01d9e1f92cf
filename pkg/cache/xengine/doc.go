// Package xengine 提供进程内对象缓存引擎。
//
// 引擎把条目存储、淘汰策略（xpolicy）、标签索引（xtag）、
// 统计计数（xstats）与事件通知（xevent）编排为一套完整的缓存语义：
//
//   - 读写与批量操作：Get/Set/Delete、GetMany/SetMany 等；
//   - TTL 管理：GetTTL/SetTTL/Touch/Expire，过期采用惰性删除加周期清理；
//   - 标签：按标签查询与批量失效；
//   - stale-while-revalidate：GetOrSet 对陈旧命中立即返回旧值并后台刷新；
//   - 记忆化：Memoize 把任意函数包装为带缓存的版本；
//   - 持久化：Dump/Restore 导出与还原全量状态（xdump 格式）；
//   - 命名空间：Namespace 返回共享引擎的带前缀视图；
//   - 插件：写入/读取/删除/序列化路径上的值变换钩子。
//
// 所有方法并发安全。事件在触发操作的调用栈上同步投递。
package xengine
