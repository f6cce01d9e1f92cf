package xstore

import "errors"

var (
	// ErrNotFound 表示键不存在。
	ErrNotFound = errors.New("xstore: key not found")

	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xstore: nil client")

	// ErrEmptyKey 表示键为空字符串。
	ErrEmptyKey = errors.New("xstore: empty key")

	// ErrClosed 表示存储已关闭。
	ErrClosed = errors.New("xstore: store closed")
)
