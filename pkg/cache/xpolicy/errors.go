package xpolicy

import "errors"

var (
	// ErrUnknownPolicy 表示按名称查找策略失败。
	ErrUnknownPolicy = errors.New("xpolicy: unknown policy")

	// ErrEmptyName 表示注册时策略名称为空。
	ErrEmptyName = errors.New("xpolicy: empty policy name")

	// ErrNilFactory 表示注册时策略工厂为 nil。
	ErrNilFactory = errors.New("xpolicy: nil policy factory")
)
