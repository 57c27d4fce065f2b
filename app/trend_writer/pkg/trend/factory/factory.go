package factory

import (
	"fmt"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/baidu"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/weibo"
)

// DefaultSources 默认优先微博，失败转百度
var DefaultSources = []config.SourceConfig{
	{Provider: "weibo"},
	{Provider: "baidu"},
}

// NewScrapers 根据配置按顺序创建抓取实例
func NewScrapers(cfg config.TrendConfig) ([]trend.Scraper, error) {
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = DefaultSources
	}

	scrapers := make([]trend.Scraper, 0, len(sources))
	for _, src := range sources {
		s, err := newScraper(src)
		if err != nil {
			return nil, err
		}
		scrapers = append(scrapers, s)
	}
	return scrapers, nil
}

func newScraper(src config.SourceConfig) (trend.Scraper, error) {
	timeout, err := config.ParseDuration(src.Timeout, 0)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Provider, err)
	}

	switch src.Provider {
	case "weibo":
		var opts []weibo.Option
		if src.URL != "" {
			opts = append(opts, weibo.WithURL(src.URL))
		}
		return weibo.NewClient(timeout, opts...), nil

	case "baidu":
		var opts []baidu.Option
		if src.URL != "" {
			opts = append(opts, baidu.WithURL(src.URL))
		}
		return baidu.NewClient(timeout, opts...), nil

	default:
		return nil, fmt.Errorf("unknown trend provider: %s", src.Provider)
	}
}
