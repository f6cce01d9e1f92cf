package xstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// memoryStore 是基于 map 的进程内实现，主要用于测试与单机兜底。
// 过期采用读时惰性判定，不起后台协程。
type memoryStore struct {
	mu     sync.RWMutex
	data   map[string]memoryItem
	closed atomic.Bool
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (it memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// NewMemory 创建内存存储。
func NewMemory() Store {
	return &memoryStore{data: make(map[string]memoryItem)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	s.mu.RLock()
	it, ok := s.data[key]
	s.mu.RUnlock()
	if !ok || it.expired(time.Now()) {
		return nil, ErrNotFound
	}
	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	it := memoryItem{value: make([]byte, len(value))}
	copy(it.value, value)
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = it
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Has(ctx context.Context, key string) (bool, error) {
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

func (s *memoryStore) Keys(_ context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	now := time.Now()
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k, it := range s.data {
		if !it.expired(now) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	s.data = make(map[string]memoryItem)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Len(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *memoryStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}
