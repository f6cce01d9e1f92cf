// Package xplug 提供一组开箱即用的缓存引擎插件。
//
//   - Compression：序列化路径上 gzip 压缩超过阈值的字符串值；
//   - Logging：Debug 级别记录写入与删除；
//   - Stamp：写入时在元数据里打时间戳；
//   - ReadOnly：冻结缓存，拒绝写入与删除。
//
// 插件通过 xengine.WithPlugins 注册，按注册顺序执行。
package xplug
