// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xstore: 字节存储抽象层，支持内存、Redis、Ristretto 和 LRU 后端，
//     并提供缓存镜像插件与回灌工具
//
// 设计原则：
//   - 提供统一的接口抽象，支持多种存储后端
//   - 过期语义由各后端按自身能力实现
package storage
