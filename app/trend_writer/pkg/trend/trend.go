package trend

import (
	"context"
	"strings"
)

// MaxItems 每个来源最多保留的热点条数
const MaxItems = 10

// UserAgent 抓取时伪装的浏览器标识，避免被目标站点拦截
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Item 单条热点，形如 "【微博】标题"，前缀是唯一的来源标识
type Item = string

// Set 一次抓取得到的有序热点列表
type Set []Item

// Scraper 定义通用的热点抓取接口
type Scraper interface {
	// Name 返回来源名称，用于日志和指标
	Name() string
	// Scrape 抓取并解析一次榜单，失败时返回 error 而不是 panic
	Scrape(ctx context.Context) (Set, error)
}

// Clone 返回副本，调用方修改不会影响缓存
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// Lines 以 "- 热点" 的形式逐行拼接，用于拼进 prompt
func (s Set) Lines() string {
	lines := make([]string, 0, len(s))
	for _, item := range s {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

// Collector 按文档顺序收集标题，打标签并截断到 MaxItems
type Collector struct {
	label string
	skip  func(title string) bool
	items Set
}

// NewCollector 创建收集器，skip 为 nil 时只过滤空标题
func NewCollector(label string, skip func(title string) bool) *Collector {
	return &Collector{label: label, skip: skip}
}

// Add 处理一个原始标题，返回是否已达上限
func (c *Collector) Add(raw string) bool {
	if len(c.items) >= MaxItems {
		return true
	}
	title := strings.TrimSpace(raw)
	if title == "" || (c.skip != nil && c.skip(title)) {
		return false
	}
	c.items = append(c.items, c.label+title)
	return len(c.items) >= MaxItems
}

// Set 返回收集结果
func (c *Collector) Set() Set {
	return c.items
}
