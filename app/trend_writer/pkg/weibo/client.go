package weibo

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

const (
	// DefaultURL 微博热搜榜
	DefaultURL = "https://s.weibo.com/top/summary"
	// Label 微博热点前缀
	Label = "【微博】"

	// 热搜标题在 td.td-02 下的 a 标签里
	selector = "td.td-02 > a"
	// 置顶/广告位的占位文本
	placeholder = "javascript:void(0);"
)

// Client 微博热搜抓取客户端
type Client struct {
	url    string
	client *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithURL 覆盖榜单地址，测试或镜像站使用
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient 创建微博抓取客户端，timeout 为 0 时使用 5 秒
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		url:    DefaultURL,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure Client implements trend.Scraper
var _ trend.Scraper = (*Client)(nil)

// Name implements trend.Scraper
func (c *Client) Name() string {
	return "weibo"
}

// Scrape implements trend.Scraper
func (c *Client) Scrape(ctx context.Context) (trend.Set, error) {
	doc, err := trend.FetchDocument(ctx, c.client, c.url)
	if err != nil {
		return nil, err
	}
	return Parse(doc), nil
}

// Parse 从热搜页面中提取前 10 条热点
func Parse(doc *goquery.Document) trend.Set {
	col := trend.NewCollector(Label, func(title string) bool {
		return title == placeholder
	})
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		return !col.Add(s.Text())
	})
	return col.Set()
}
