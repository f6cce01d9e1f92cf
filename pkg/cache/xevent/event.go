package xevent

import "time"

// Kind 表示事件类型。
type Kind string

// 八种生命周期事件。
const (
	KindHit    Kind = "hit"
	KindMiss   Kind = "miss"
	KindSet    Kind = "set"
	KindDelete Kind = "delete"
	KindExpire Kind = "expire"
	KindEvict  Kind = "evict"
	KindClear  Kind = "clear"
	KindPrune  Kind = "prune"
)

// Reason 表示删除事件的成因。
type Reason string

// 删除成因。
const (
	// ReasonExplicit 调用方显式删除。
	ReasonExplicit Reason = "explicit"

	// ReasonExpired TTL 过期（惰性发现或周期清理）。
	ReasonExpired Reason = "expired"

	// ReasonEvicted 容量或内存上限淘汰。
	ReasonEvicted Reason = "evicted"

	// ReasonInvalidated 按标签批量失效。
	ReasonInvalidated Reason = "invalidated"
)

// Event 是带类型标签的事件载荷。
// 各字段按事件类型填充：Key/Value 用于单键事件，
// Reason 仅随 delete 事件出现，Count 用于 clear/prune 聚合事件。
type Event struct {
	// Kind 事件类型。
	Kind Kind

	// Key 涉及的键，聚合事件（clear/prune）为空。
	Key string

	// Value 涉及的值；miss 事件为 nil。
	Value any

	// Reason 删除成因，仅 delete 事件携带。
	Reason Reason

	// Count 移除条目数，仅 clear/prune 事件携带。
	Count int

	// At 事件发生时刻。
	At time.Time
}
