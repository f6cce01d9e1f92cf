package xcacheconf

import "errors"

var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xcacheconf: empty path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xcacheconf: unsupported format")

	// ErrLoadFailed 表示配置读取失败。
	ErrLoadFailed = errors.New("xcacheconf: load failed")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xcacheconf: parse failed")

	// ErrUnmarshalFailed 表示配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xcacheconf: unmarshal failed")

	// ErrInvalidDuration 表示时长字段的值无法解析。
	ErrInvalidDuration = errors.New("xcacheconf: invalid duration")
)
