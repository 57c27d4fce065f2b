package cache

import (
	"sync"
	"time"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

// DefaultTTL 缓存有效期，避免每次刷新都去抓取导致被封
const DefaultTTL = 300 * time.Second

// Cache 保存最近一次成功抓取的热点
type Cache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
	trends     trend.Set
	capturedAt time.Time
}

// Option 缓存选项
type Option func(*Cache)

// WithClock 注入时钟，测试中避免真实 sleep
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New 创建空缓存，ttl <= 0 时使用 DefaultTTL
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL 返回有效期
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Now 返回缓存使用的当前时间
func (c *Cache) Now() time.Time {
	return c.now()
}

// Read 缓存非空且未过期时返回副本，否则 ok 为 false
func (c *Cache) Read() (trend.Set, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.trends) == 0 || c.now().Sub(c.capturedAt) >= c.ttl {
		return nil, false
	}
	return c.trends.Clone(), true
}

// Write 仅在 set 非空时覆盖缓存，返回是否写入
func (c *Cache) Write(set trend.Set, at time.Time) bool {
	if len(set) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.trends = set.Clone()
	c.capturedAt = at
	return true
}

// Stale 返回最近一次写入的热点及时间，不检查有效期
func (c *Cache) Stale() (trend.Set, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trends.Clone(), c.capturedAt
}
