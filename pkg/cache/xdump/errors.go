package xdump

import "errors"

var (
	// ErrNilDump 表示传入的转储为 nil。
	ErrNilDump = errors.New("xdump: nil dump")

	// ErrEncodeFailed 表示转储编码失败。
	ErrEncodeFailed = errors.New("xdump: encode failed")

	// ErrDecodeFailed 表示转储解码失败。
	ErrDecodeFailed = errors.New("xdump: decode failed")

	// ErrUnsupportedVersion 表示转储格式版本不受支持。
	ErrUnsupportedVersion = errors.New("xdump: unsupported dump version")
)
