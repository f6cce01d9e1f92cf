package xstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xengine"
)

// MirrorOptions 定义写透镜像的配置选项。
type MirrorOptions struct {
	// TTL 镜像条目在外部存储中的存活时长。0 表示不过期。
	TTL time.Duration

	// Timeout 单次外部存储操作的超时。默认 3 秒。
	Timeout time.Duration

	// Logger 用于上报被吞掉的镜像写入错误。
	// 默认 slog.Default()，传 nil 禁用日志输出。
	Logger *slog.Logger
}

// MirrorOption 定义配置写透镜像的函数类型。
type MirrorOption func(*MirrorOptions)

func defaultMirrorOptions() *MirrorOptions {
	return &MirrorOptions{
		Timeout: 3 * time.Second,
		Logger:  slog.Default(),
	}
}

// WithMirrorTTL 设置镜像条目的存活时长。
func WithMirrorTTL(ttl time.Duration) MirrorOption {
	return func(o *MirrorOptions) { o.TTL = ttl }
}

// WithMirrorTimeout 设置单次外部操作的超时。d ≤ 0 时忽略。
func WithMirrorTimeout(d time.Duration) MirrorOption {
	return func(o *MirrorOptions) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithMirrorLogger 设置日志输出，传 nil 禁用。
func WithMirrorLogger(logger *slog.Logger) MirrorOption {
	return func(o *MirrorOptions) { o.Logger = logger }
}

// Mirror 构造写透镜像插件：引擎的每次写入/删除同步映射到外部存储。
// 值经 JSON 编码落入存储；编码或存储失败只记录日志，
// 不影响进程内缓存本身（缓存是权威，镜像是尽力而为的副本）。
func Mirror(store Store, opts ...MirrorOption) *xengine.Plugin {
	options := defaultMirrorOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	logError := func(msg string, args ...any) {
		if options.Logger != nil {
			options.Logger.Error(msg, args...)
		}
	}

	return &xengine.Plugin{
		Name: "xstore-mirror",
		AfterSet: func(key string, value any) {
			data, err := json.Marshal(value)
			if err != nil {
				logError("xstore: mirror encode failed", "key", key, "error", err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), options.Timeout)
			defer cancel()
			if err := store.Set(ctx, key, data, options.TTL); err != nil {
				logError("xstore: mirror set failed", "key", key, "error", err)
			}
		},
		AfterDelete: func(key string) {
			ctx, cancel := context.WithTimeout(context.Background(), options.Timeout)
			defer cancel()
			if err := store.Delete(ctx, key); err != nil {
				logError("xstore: mirror delete failed", "key", key, "error", err)
			}
		},
	}
}

// LoadInto 把外部存储的全部键值预热进引擎（JSON 解码后写入）。
// 返回成功装载的条目数。单个键的读取或解码失败中止装载并返回错误。
// 写入使用给定的写入选项（TTL 等由调用方决定）。
func LoadInto(ctx context.Context, store Store, cache *xengine.Cache, opts ...xengine.SetOption) (int, error) {
	if store == nil || cache == nil {
		return 0, ErrNilClient
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, k := range keys {
		data, err := store.Get(ctx, k)
		if errors.Is(err, ErrNotFound) {
			continue // 枚举与读取之间过期了
		}
		if err != nil {
			return loaded, err
		}
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return loaded, err
		}
		if err := cache.Set(k, value, opts...); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
