// Package xtag 提供键与标签的双向多值索引，支撑按标签批量失效。
//
// 索引维护两个互为镜像的映射：tag→{keys} 与 key→{tags}。
// 两个方向始终一致；某个标签的最后一个键被移除时，
// 该标签的桶整体删除，不保留空桶。
//
// 所有操作的复杂度与触碰到的标签数量成正比，
// 只有 AllTags 会枚举全部已知标签。
//
// Index 不做并发保护，由持有它的引擎统一加锁。
package xtag
