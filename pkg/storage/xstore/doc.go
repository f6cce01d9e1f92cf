// Package xstore 提供进程内缓存之外的字节存储适配层。
//
// Store 接口把不同后端统一为带 TTL 的键值字节存储：
//
//   - NewMemory：map 实现，测试与单机兜底；
//   - NewRedis：go-redis 实现，跨进程共享与持久化；
//   - NewRistretto：ristretto 实现，按成本准入的热点层；
//   - NewLRU：hashicorp 过期 LRU，固定容量的轻量层。
//
// Mirror 把 Store 接到缓存引擎的插件钩子上，实现写透镜像；
// LoadInto 反向把存储内容预热进引擎。
package xstore
