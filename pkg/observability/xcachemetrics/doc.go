// Package xcachemetrics 把缓存统计暴露为 OpenTelemetry 指标。
//
// Register 以异步方式注册一组 observable 仪表：规模类（条目数、容量、
// 内存、命中率）上报当前值，计数类（命中、未命中、写入、删除、淘汰、
// 过期）上报累计值。采集发生在 SDK 的读取周期内，缓存的热路径零开销。
// 同进程多实例通过 WithCacheName 区分。
package xcachemetrics
