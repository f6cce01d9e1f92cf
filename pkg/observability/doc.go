// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xcachemetrics: 缓存统计的 OpenTelemetry 指标导出
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 异步采集，不侵入缓存热路径
package observability
