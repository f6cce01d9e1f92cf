// Package xdump 定义缓存转储格式及其 JSON 编解码。
//
// 转储由带版本号的记录集合组成：每条记录携带键、值、全部时间戳、
// TTL、陈旧窗口、标签与元数据；转储整体附带一份计数器快照。
//
// 值通过 encoding/json 往返，因此只有 JSON 可表示的值才能
// 无损恢复（数字会统一为 float64，这是 JSON 的固有语义）。
// 恢复时对过期记录的过滤由引擎完成，本包只负责格式。
package xdump
