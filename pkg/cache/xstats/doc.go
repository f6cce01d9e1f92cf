// Package xstats 提供缓存运行统计：单调递增的操作计数器与派生快照。
//
// Tracker 维护命中、未命中、写入、删除、淘汰、过期六个计数器，
// 以及一个随 Reset 重启的运行时钟。命中率定义为
// hits / (hits + misses)，两者皆为零时取 0。
//
// Snapshot 在调用时刻扫描存活条目集，额外派生出条目数、
// 近似内存占用、在用命名空间（按键的冒号前缀推断）、
// 最早/最新条目以及平均 TTL。
//
// Tracker 自身不做并发保护，同步责任在持有它的引擎；
// 这与条目存储共用一把锁，避免计数与存储状态错位。
package xstats
