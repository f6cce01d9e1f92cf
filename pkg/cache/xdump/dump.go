package xdump

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/omeyang/cachekit/pkg/cache/xentry"
	"github.com/omeyang/cachekit/pkg/cache/xstats"
)

// Version 当前转储格式版本。
const Version = 1

// Record 是转储中的一条条目记录。
type Record struct {
	Key         string         `json:"key"`
	Value       any            `json:"value"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	AccessedAt  time.Time      `json:"accessed_at"`
	AccessCount int64          `json:"access_count"`
	Size        int64          `json:"size"`
	TTL         time.Duration  `json:"ttl,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	StaleAt     *time.Time     `json:"stale_at,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Dump 是一次完整转储。
type Dump struct {
	// Version 格式版本标签。
	Version int `json:"version"`

	// CreatedAt 转储生成时刻。
	CreatedAt time.Time `json:"created_at"`

	// Entries 存活条目记录，按转储时的枚举顺序排列。
	Entries []Record `json:"entries"`

	// Counters 转储时刻的计数器快照。
	Counters xstats.Counters `json:"counters"`
}

// FromEntry 把条目转换为转储记录。
func FromEntry(e xentry.Entry) Record {
	r := Record{
		Key:         e.Key,
		Value:       e.Value,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		AccessedAt:  e.AccessedAt,
		AccessCount: e.AccessCount,
		Size:        e.Size,
		TTL:         e.TTL,
		Tags:        e.Tags,
		Metadata:    e.Metadata,
	}
	if !e.ExpiresAt.IsZero() {
		t := e.ExpiresAt
		r.ExpiresAt = &t
	}
	if !e.StaleAt.IsZero() {
		t := e.StaleAt
		r.StaleAt = &t
	}
	return r
}

// ToEntry 把转储记录还原为条目。
func (r Record) ToEntry() xentry.Entry {
	e := xentry.Entry{
		Key:         r.Key,
		Value:       r.Value,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		AccessedAt:  r.AccessedAt,
		AccessCount: r.AccessCount,
		Size:        r.Size,
		TTL:         r.TTL,
		Tags:        r.Tags,
		Metadata:    r.Metadata,
	}
	if r.ExpiresAt != nil {
		e.ExpiresAt = *r.ExpiresAt
	}
	if r.StaleAt != nil {
		e.StaleAt = *r.StaleAt
	}
	return e
}

// Expired 报告记录在 now 时刻是否已过期。
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// Marshal 把转储编码为 JSON。
func Marshal(d *Dump) ([]byte, error) {
	if d == nil {
		return nil, ErrNilDump
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return data, nil
}

// Unmarshal 从 JSON 解码转储，并校验版本。
func Unmarshal(data []byte) (*Dump, error) {
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if d.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	return &d, nil
}
