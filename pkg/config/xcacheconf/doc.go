// Package xcacheconf 提供缓存引擎的声明式配置加载。
//
// 配置以 YAML 或 JSON 描述（容量、策略、TTL、清理计划等），
// 经 Load/LoadBytes 解析为 Config，再由 Options 转换为引擎构造选项；
// NewCache 一步完成加载与构造。Watch 监控配置文件变更并防抖重载，
// 回调方可据新配置调用引擎的 Resize 等方法热应用。
package xcacheconf
