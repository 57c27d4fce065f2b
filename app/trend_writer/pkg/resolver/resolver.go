package resolver

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/cache"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/logger"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/metrics"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

// Resolver 热点统一入口：缓存 -> 主源 -> 备用源 -> 空结果
type Resolver struct {
	cache      *cache.Cache
	scrapers   []trend.Scraper
	metrics    *metrics.Metrics
	serveStale bool
	group      singleflight.Group
}

// Option 解析器选项
type Option func(*Resolver)

// WithMetrics 记录抓取与缓存指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithServeStale 所有来源都失败时返回过期的缓存
func WithServeStale(enabled bool) Option {
	return func(r *Resolver) { r.serveStale = enabled }
}

// New 创建解析器，scrapers 按优先级排列
func New(c *cache.Cache, scrapers []trend.Scraper, opts ...Option) *Resolver {
	r := &Resolver{cache: c, scrapers: scrapers}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetTrends 返回 0~10 条热点，空结果表示调用方应使用静态兜底数据
func (r *Resolver) GetTrends(ctx context.Context) trend.Set {
	if set, ok := r.cache.Read(); ok {
		r.metrics.CacheHit()
		logger.Log.Debugf("使用缓存热点数据 (%d 条)", len(set))
		return set
	}
	r.metrics.CacheMiss()

	// 并发的未命中请求只抓取一次；抓取不随发起者的请求取消，只受各来源的超时限制
	shared := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do("trends", func() (interface{}, error) {
		if set, ok := r.cache.Read(); ok {
			return set, nil
		}
		return r.Refresh(shared), nil
	})
	set := v.(trend.Set)

	if len(set) == 0 && r.serveStale {
		if stale, at := r.cache.Stale(); len(stale) > 0 {
			logger.Log.Warnf("实时抓取全部失败，返回 %s 前的过期缓存", time.Since(at).Truncate(time.Second))
			return stale
		}
	}
	return set.Clone()
}

// Refresh 跳过缓存按顺序抓取，成功时写入缓存
func (r *Resolver) Refresh(ctx context.Context) trend.Set {
	logger.Log.Info("开始实时抓取热点...")

	for i, s := range r.scrapers {
		set := r.scrape(ctx, s)
		if len(set) == 0 {
			if i+1 < len(r.scrapers) {
				logger.Log.Warnf("%s 抓取为空，切换至 %s 源...", s.Name(), r.scrapers[i+1].Name())
			}
			continue
		}

		r.cache.Write(set, r.cache.Now())
		logger.Log.Infof("%s 抓取成功，获取到 %d 条热点", s.Name(), len(set))
		return set
	}

	logger.Log.Warn("所有热点来源均为空")
	return nil
}

// Cached 返回最近一次成功抓取的热点，不检查有效期
func (r *Resolver) Cached() trend.Set {
	set, _ := r.cache.Stale()
	return set
}

// scrape 执行单个来源，错误在此记录并归一为空结果
func (r *Resolver) scrape(ctx context.Context, s trend.Scraper) trend.Set {
	start := time.Now()
	set, err := s.Scrape(ctx)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		r.metrics.ObserveScrape(s.Name(), metrics.ResultFailed, elapsed)
		logger.Log.WithField("source", s.Name()).Warnf("热点抓取失败: %v", err)
		return nil
	case len(set) == 0:
		r.metrics.ObserveScrape(s.Name(), metrics.ResultEmpty, elapsed)
		return nil
	}

	r.metrics.ObserveScrape(s.Name(), metrics.ResultOK, elapsed)
	if len(set) > trend.MaxItems {
		set = set[:trend.MaxItems]
	}
	return set
}
