package xplug

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

// compressPrefix 标记已压缩的序列化值，反序列化据此识别。
const compressPrefix = "gz:"

// CompressionOptions 定义压缩插件的配置选项。
type CompressionOptions struct {
	// Threshold 触发压缩的最小字符串长度（字节）。
	// 短值压缩得不偿失。默认 1024。
	Threshold int

	// Level gzip 压缩级别。默认 gzip.DefaultCompression。
	Level int
}

// CompressionOption 定义配置压缩插件的函数类型。
type CompressionOption func(*CompressionOptions)

func defaultCompressionOptions() *CompressionOptions {
	return &CompressionOptions{
		Threshold: 1024,
		Level:     gzip.DefaultCompression,
	}
}

// WithThreshold 设置触发压缩的最小长度。n < 0 时忽略。
func WithThreshold(n int) CompressionOption {
	return func(o *CompressionOptions) {
		if n >= 0 {
			o.Threshold = n
		}
	}
}

// WithLevel 设置 gzip 压缩级别。
func WithLevel(level int) CompressionOption {
	return func(o *CompressionOptions) { o.Level = level }
}

// Compression 构造压缩插件：序列化路径上把超过阈值的字符串值
// gzip 压缩并 base64 编码（带 gz: 前缀），反序列化时透明还原。
// 非字符串值原样放行。作用于 Dump/Restore 与写透镜像等序列化场景。
func Compression(opts ...CompressionOption) *xengine.Plugin {
	options := defaultCompressionOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	return &xengine.Plugin{
		Name: "compression",
		BeforeSerialize: func(_ string, value any) (any, error) {
			s, ok := value.(string)
			if !ok || len(s) < options.Threshold {
				return value, nil
			}
			compressed, err := compress(s, options.Level)
			if err != nil {
				return nil, err
			}
			return compressed, nil
		},
		AfterDeserialize: func(_ string, value any) (any, error) {
			s, ok := value.(string)
			if !ok || !strings.HasPrefix(s, compressPrefix) {
				return value, nil
			}
			return decompress(s)
		},
	}
}

func compress(s string, level int) (string, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return "", fmt.Errorf("xplug: gzip level: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return "", fmt.Errorf("xplug: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("xplug: compress: %w", err)
	}
	return compressPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decompress(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, compressPrefix))
	if err != nil {
		return "", fmt.Errorf("xplug: decompress decode: %w", err)
	}
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("xplug: decompress: %w", err)
	}
	defer r.Close()

	// 解压大小设上限，防御构造出的解压炸弹。
	out, err := io.ReadAll(io.LimitReader(r, maxDecompressedSize+1))
	if err != nil {
		return "", fmt.Errorf("xplug: decompress read: %w", err)
	}
	if len(out) > maxDecompressedSize {
		return "", fmt.Errorf("xplug: decompressed value exceeds %d bytes", maxDecompressedSize)
	}
	return string(out), nil
}

// maxDecompressedSize 单个值解压后的大小上限（64MB）。
const maxDecompressedSize = 64 * 1024 * 1024
