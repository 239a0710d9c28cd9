package cache

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
)

const cacheTypeChart = "chart"

// Image 渲染结果
type Image struct {
	ContentType string
	Data        []byte
}

// ChartKey 图片缓存键，快照时间变化后自动失效
type ChartKey struct {
	Kind      string
	Format    string
	FetchedAt time.Time
	MinShort  float64
	MinLong   float64
	MinFDV    float64
}

func (k ChartKey) String() string {
	return fmt.Sprintf("%s.%s@%d|%g|%g|%g",
		k.Kind, k.Format, k.FetchedAt.UnixNano(), k.MinShort, k.MinLong, k.MinFDV)
}

// ChartCache 图片缓存，使用 go-cache 实现 TTL 自动过期
type ChartCache struct {
	cache *cache.Cache // go-cache 内置 TTL 和自动清理
	ttl   time.Duration
}

// NewChartCache 创建图片缓存
// ttl 一般与快照 TTL 相同，清理间隔自动设为 2×TTL
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get 查询图片
func (c *ChartCache) Get(key ChartKey) (Image, bool) {
	v, ok := c.cache.Get(key.String())
	if !ok {
		monitor.IncCacheMiss(cacheTypeChart)
		return Image{}, false
	}
	monitor.IncCacheHit(cacheTypeChart)
	return v.(Image), true
}

// Set 写入图片
func (c *ChartCache) Set(key ChartKey, img Image) {
	c.cache.Set(key.String(), img, cache.DefaultExpiration)
}

// Flush 清空所有图片
func (c *ChartCache) Flush() {
	c.cache.Flush()
}

// Stats 获取统计信息
func (c *ChartCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"item_count":  c.cache.ItemCount(),
		"ttl_minutes": c.ttl.Minutes(),
	}
}
