package baidu

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

const (
	// DefaultURL 百度实时热搜榜
	DefaultURL = "https://top.baidu.com/board?tab=realtime"
	// Label 百度热点前缀
	Label = "【百度】"

	selector = ".c-single-text-ellipsis"
)

// Client 百度热搜抓取客户端
type Client struct {
	url    string
	client *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithURL 覆盖榜单地址
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient 创建百度抓取客户端
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
	return "baidu"
}

// Scrape implements trend.Scraper
func (c *Client) Scrape(ctx context.Context) (trend.Set, error) {
	doc, err := trend.FetchDocument(ctx, c.client, c.url)
	if err != nil {
		return nil, err
	}
	return Parse(doc), nil
}

// Parse 提取榜单标题，只过滤空标题
func Parse(doc *goquery.Document) trend.Set {
	col := trend.NewCollector(Label, nil)
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		return !col.Add(s.Text())
	})
	return col.Set()
}
