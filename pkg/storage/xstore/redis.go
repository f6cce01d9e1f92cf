package xstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore 把 Store 映射到 Redis：键加统一前缀，
// 枚举与清空通过 SCAN 实现，避免阻塞的 KEYS 命令。
type redisStore struct {
	client  redis.UniversalClient
	options *RedisOptions
	closed  atomic.Bool
}

// RedisOptions 定义 Redis 存储的配置选项。
type RedisOptions struct {
	// KeyPrefix 所有键的统一前缀，用于和同库的其他数据隔离。
	// 默认 "cachekit:"。
	KeyPrefix string

	// ScanCount SCAN 每批返回的键数提示。默认 200。
	ScanCount int64
}

// RedisOption 定义配置 Redis 存储的函数类型。
type RedisOption func(*RedisOptions)

func defaultRedisOptions() *RedisOptions {
	return &RedisOptions{
		KeyPrefix: "cachekit:",
		ScanCount: 200,
	}
}

// WithKeyPrefix 设置键前缀。
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *RedisOptions) { o.KeyPrefix = prefix }
}

// WithScanCount 设置 SCAN 的批量提示。n ≤ 0 时忽略。
func WithScanCount(n int64) RedisOption {
	return func(o *RedisOptions) {
		if n > 0 {
			o.ScanCount = n
		}
	}
}

// NewRedis 创建 Redis 存储。
// client 必须是已初始化的 redis.UniversalClient，生命周期由调用方管理，
// Close 不会关闭传入的客户端。
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	options := defaultRedisOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return &redisStore{client: client, options: options}, nil
}

func (s *redisStore) key(key string) string {
	return s.options.KeyPrefix + key
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("xstore: redis get %q: %w", key, err)
	}
	return data, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("xstore: redis set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("xstore: redis del %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Has(ctx context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("xstore: redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *redisStore) Keys(ctx context.Context) ([]string, error) {
	raw, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, s.options.KeyPrefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	raw, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, raw...).Err(); err != nil {
		return fmt.Errorf("xstore: redis clear: %w", err)
	}
	return nil
}

func (s *redisStore) Len(ctx context.Context) (int, error) {
	raw, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// scan 按前缀遍历全部键，返回带前缀的原始键名。
func (s *redisStore) scan(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var (
		keys   []string
		cursor uint64
	)
	pattern := s.options.KeyPrefix + "*"
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, s.options.ScanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("xstore: redis scan: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (s *redisStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}
