package xstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ristrettoStore 把 Store 映射到 ristretto：
// 自带按成本的准入/淘汰，适合做高频读的热点层。
// ristretto 本身不支持枚举，键集合在旁路簿记（含过期时间）。
type ristrettoStore struct {
	cache  *ristretto.Cache[string, []byte]
	closed atomic.Bool

	mu   sync.Mutex
	keys map[string]time.Time // 键 → 过期时间，零值表示不过期
}

// RistrettoOptions 定义 ristretto 存储的配置选项。
type RistrettoOptions struct {
	// NumCounters 频率统计的计数器数量，建议为预期键数的 10 倍。
	// 默认 1e6。
	NumCounters int64

	// MaxCost 最大总成本（字节）。默认 64MB。
	MaxCost int64

	// BufferItems 写入缓冲区大小。默认 64。
	BufferItems int64
}

// RistrettoOption 定义配置 ristretto 存储的函数类型。
type RistrettoOption func(*RistrettoOptions)

func defaultRistrettoOptions() *RistrettoOptions {
	return &RistrettoOptions{
		NumCounters: 1e6,
		MaxCost:     64 * 1024 * 1024,
		BufferItems: 64,
	}
}

// WithNumCounters 设置频率计数器数量。n ≤ 0 时忽略。
func WithNumCounters(n int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if n > 0 {
			o.NumCounters = n
		}
	}
}

// WithMaxCost 设置最大总成本（字节）。cost ≤ 0 时忽略。
func WithMaxCost(cost int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if cost > 0 {
			o.MaxCost = cost
		}
	}
}

// WithBufferItems 设置写入缓冲区大小。n ≤ 0 时忽略。
func WithBufferItems(n int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if n > 0 {
			o.BufferItems = n
		}
	}
}

// NewRistretto 创建 ristretto 存储。
// 写入是同步语义：Set 内部等待缓冲落定后返回，读侧立即可见。
func NewRistretto(opts ...RistrettoOption) (Store, error) {
	options := defaultRistrettoOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: options.NumCounters,
		MaxCost:     options.MaxCost,
		BufferItems: options.BufferItems,
		OnEvict:     nil,
	})
	if err != nil {
		return nil, fmt.Errorf("xstore: create ristretto: %w", err)
	}
	return &ristrettoStore{
		cache: cache,
		keys:  make(map[string]time.Time),
	}, nil
}

func (s *ristrettoStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	data, ok := s.cache.Get(key)
	if !ok {
		s.forget(key)
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *ristrettoStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	cost := int64(len(key) + len(value))
	if ttl > 0 {
		s.cache.SetWithTTL(key, value, cost, ttl)
	} else {
		s.cache.Set(key, value, cost)
	}
	s.cache.Wait()

	s.mu.Lock()
	if ttl > 0 {
		s.keys[key] = time.Now().Add(ttl)
	} else {
		s.keys[key] = time.Time{}
	}
	s.mu.Unlock()
	return nil
}

func (s *ristrettoStore) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Del(key)
	s.forget(key)
	return nil
}

func (s *ristrettoStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *ristrettoStore) Keys(_ context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	now := time.Now()
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for k, exp := range s.keys {
		if !exp.IsZero() && !now.Before(exp) {
			delete(s.keys, k)
			continue
		}
		// 旁路簿记可能领先于 ristretto 的准入淘汰，以实际存在为准。
		if _, ok := s.cache.Get(k); ok {
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *ristrettoStore) Clear(_ context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Clear()
	s.mu.Lock()
	s.keys = make(map[string]time.Time)
	s.mu.Unlock()
	return nil
}

func (s *ristrettoStore) Len(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *ristrettoStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s.cache.Close()
	return nil
}

func (s *ristrettoStore) forget(key string) {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
}
