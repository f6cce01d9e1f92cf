package xstore

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// lruStore 把 Store 映射到 hashicorp 的过期 LRU：
// 固定容量、LRU 淘汰、缓存级统一 TTL。
// 底层不支持逐条 TTL，Set 的 ttl 参数被忽略，以构造时的 TTL 为准。
type lruStore struct {
	cache  *expirable.LRU[string, []byte]
	closed atomic.Bool
}

// NewLRU 创建过期 LRU 存储。
// size ≤ 0 表示不限条数；ttl ≤ 0 表示不过期。
func NewLRU(size int, ttl time.Duration) Store {
	return &lruStore{
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (s *lruStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Set 写入键值。ttl 参数被忽略，统一使用构造时的缓存级 TTL。
func (s *lruStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	s.cache.Add(key, value)
	return nil
}

func (s *lruStore) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Remove(key)
	return nil
}

func (s *lruStore) Has(_ context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	return s.cache.Contains(key), nil
}

func (s *lruStore) Keys(_ context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	keys := s.cache.Keys()
	sort.Strings(keys)
	return keys, nil
}

func (s *lruStore) Clear(_ context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Purge()
	return nil
}

func (s *lruStore) Len(_ context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.cache.Len(), nil
}

func (s *lruStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s.cache.Purge()
	return nil
}
