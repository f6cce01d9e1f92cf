package xcacheconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 表示配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// LoadOptions 定义加载行为的配置选项。
type LoadOptions struct {
	// Key 配置在文件中的子树路径（koanf 点分路径）。
	// 空串表示整个文件就是缓存配置；"cache" 表示读取顶层 cache 节。
	Key string
}

// LoadOption 定义配置加载行为的函数类型。
type LoadOption func(*LoadOptions)

// WithKey 设置配置子树路径，便于把缓存配置嵌在应用配置文件里。
func WithKey(key string) LoadOption {
	return func(o *LoadOptions) { o.Key = key }
}

// Load 从文件加载缓存配置，按扩展名识别格式（.yaml/.yml/.json）。
func Load(path string, opts ...LoadOption) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format, opts...)
}

// LoadBytes 从字节数据加载缓存配置，需显式指定格式。
// 空数据返回零值配置（全部使用引擎默认值）。
func LoadBytes(data []byte, format Format, opts ...LoadOption) (*Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	options := &LoadOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf(options.Key, &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return &cfg, nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
