package server

import (
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/cache"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/engine"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/knowledge"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/metrics"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/resolver"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend/factory"
)

// NewMetrics 创建独立 Registry 上的指标
func NewMetrics() *metrics.Metrics {
	return metrics.New(nil)
}

// NewResolver 初始化热点缓存与抓取链路
func NewResolver(cfg *config.Config, m *metrics.Metrics) (*resolver.Resolver, error) {
	ttl, err := config.ParseDuration(cfg.Trend.TTL, cache.DefaultTTL)
	if err != nil {
		return nil, err
	}
	scrapers, err := factory.NewScrapers(cfg.Trend)
	if err != nil {
		return nil, err
	}

	return resolver.New(
		cache.New(ttl),
		scrapers,
		resolver.WithMetrics(m),
		resolver.WithServeStale(cfg.Trend.ServeStale),
	), nil
}

// NewWarmer 未配置 warm_spec 时返回 nil
func NewWarmer(cfg *config.Config, r *resolver.Resolver) (*resolver.Warmer, error) {
	if cfg.Trend.WarmSpec == "" {
		return nil, nil
	}
	return resolver.NewWarmer(r, cfg.Trend.WarmSpec)
}

// NewKnowledge 加载内置风格知识库
func NewKnowledge() (*knowledge.Base, error) {
	return knowledge.Default()
}

// NewEngine 初始化生成引擎
func NewEngine(cfg *config.Config, kb *knowledge.Base) (*engine.Engine, error) {
	return engine.NewEngine(cfg, kb)
}
