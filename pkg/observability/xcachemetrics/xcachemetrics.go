package xcachemetrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/cachekit/pkg/cache/xstats"
)

const (
	defaultInstrumentationName = "github.com/omeyang/cachekit/xcachemetrics"

	metricEntries     = "cachekit.cache.entries"
	metricCapacity    = "cachekit.cache.capacity"
	metricMemory      = "cachekit.cache.memory_bytes"
	metricHits        = "cachekit.cache.hits"
	metricMisses      = "cachekit.cache.misses"
	metricSets        = "cachekit.cache.sets"
	metricDeletes     = "cachekit.cache.deletes"
	metricEvictions   = "cachekit.cache.evictions"
	metricExpirations = "cachekit.cache.expirations"
	metricHitRate     = "cachekit.cache.hit_rate"
)

// ErrNilSource 表示统计数据源为空。
var ErrNilSource = errors.New("xcachemetrics: nil source")

// StatsSource 是指标采集的数据源，缓存引擎天然满足该接口。
type StatsSource interface {
	Stats() xstats.Counters
	Len() int
	Capacity() int
	MemoryUsage() int64
	HitRate() float64
}

type config struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
	attrs               []attribute.KeyValue
}

// Option 定义指标注册的配置选项。
type Option func(*config)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认使用全局实例。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// WithCacheName 为全部指标附加 cache.name 属性，
// 用于区分同一进程内的多个缓存实例。
func WithCacheName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.attrs = append(cfg.attrs, attribute.String("cache.name", name))
		}
	}
}

// Registration 表示一次指标注册，Unregister 停止采集。
type Registration struct {
	registration metric.Registration
}

// Unregister 注销指标回调，幂等。
func (r *Registration) Unregister() error {
	if r == nil || r.registration == nil {
		return nil
	}
	reg := r.registration
	r.registration = nil
	return reg.Unregister()
}

// Register 把缓存的统计数据注册为 OTel 异步指标。
// 计数器类指标（命中、写入、淘汰等）按累计值上报，
// 规模类指标（条目数、内存、命中率）按当前值上报；
// 采集在 SDK 的读取周期内进行，不增加缓存操作的开销。
func Register(source StatsSource, opts ...Option) (*Registration, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	cfg := &config{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	entries, err := meter.Int64ObservableGauge(
		metricEntries,
		metric.WithDescription("live entries in the cache"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xcachemetrics: create gauge failed: %w", err)
	}

	capacity, err := meter.Int64ObservableGauge(
		metricCapacity,
		metric.WithDescription("configured entry capacity"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xcachemetrics: create gauge failed: %w", err)
	}

	memory, err := meter.Int64ObservableGauge(
		metricMemory,
		metric.WithDescription("approximate memory held by live entries"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("xcachemetrics: create gauge failed: %w", err)
	}

	hitRate, err := meter.Float64ObservableGauge(
		metricHitRate,
		metric.WithDescription("hits divided by lookups"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xcachemetrics: create gauge failed: %w", err)
	}

	type counterSpec struct {
		name string
		desc string
	}
	specs := []counterSpec{
		{metricHits, "lookups that returned a live entry"},
		{metricMisses, "lookups that found nothing"},
		{metricSets, "write operations"},
		{metricDeletes, "explicit and invalidation removals"},
		{metricEvictions, "capacity and memory pressure removals"},
		{metricExpirations, "removals of expired entries"},
	}
	counters := make([]metric.Int64ObservableCounter, len(specs))
	for i, spec := range specs {
		counters[i], err = meter.Int64ObservableCounter(
			spec.name,
			metric.WithDescription(spec.desc),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			return nil, fmt.Errorf("xcachemetrics: create counter failed: %w", err)
		}
	}

	attrOpt := metric.WithAttributes(cfg.attrs...)
	observables := make([]metric.Observable, 0, 4+len(counters))
	observables = append(observables, entries, capacity, memory, hitRate)
	for _, c := range counters {
		observables = append(observables, c)
	}

	registration, err := meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			c := source.Stats()
			o.ObserveInt64(entries, int64(source.Len()), attrOpt)
			o.ObserveInt64(capacity, int64(source.Capacity()), attrOpt)
			o.ObserveInt64(memory, source.MemoryUsage(), attrOpt)
			o.ObserveFloat64(hitRate, source.HitRate(), attrOpt)
			for i, v := range []int64{c.Hits, c.Misses, c.Sets, c.Deletes, c.Evictions, c.Expirations} {
				o.ObserveInt64(counters[i], v, attrOpt)
			}
			return nil
		},
		observables...,
	)
	if err != nil {
		return nil, fmt.Errorf("xcachemetrics: register callback failed: %w", err)
	}

	return &Registration{registration: registration}, nil
}
