package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChartCache_GetSet(t *testing.T) {
	c := NewChartCache(30 * time.Second)
	fetchedAt := time.Unix(1_700_000_000, 0)
	key := ChartKey{Kind: "fdv_pie", Format: "svg", FetchedAt: fetchedAt}

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, Image{ContentType: "image/svg+xml", Data: []byte("<svg/>")})
	img, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "<svg/>", string(img.Data))

	// 不同格式
	_, ok = c.Get(ChartKey{Kind: "fdv_pie", Format: "png", FetchedAt: fetchedAt})
	assert.False(t, ok)

	// 新快照
	_, ok = c.Get(ChartKey{Kind: "fdv_pie", Format: "svg", FetchedAt: fetchedAt.Add(time.Second)})
	assert.False(t, ok)

	// 不同阈值
	_, ok = c.Get(ChartKey{Kind: "fdv_pie", Format: "svg", FetchedAt: fetchedAt, MinFDV: 1e6})
	assert.False(t, ok)
}

func TestChartCache_TTL(t *testing.T) {
	c := NewChartCache(100 * time.Millisecond)
	key := ChartKey{Kind: "correlation", Format: "png"}

	c.Set(key, Image{Data: []byte{1}})
	_, ok := c.Get(key)
	assert.True(t, ok)

	// 等待过期
	time.Sleep(150 * time.Millisecond)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestChartCache_Concurrent(t *testing.T) {
	c := NewChartCache(30 * time.Second)
	var wg sync.WaitGroup

	// 10 个协程同时读写
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := ChartKey{Kind: "liquidity_box", Format: "svg", MinShort: float64(id*1000 + j)}
				c.Set(key, Image{Data: []byte{byte(j)}})
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	_, ok := c.Get(ChartKey{Kind: "liquidity_box", Format: "svg", MinShort: 5000})
	assert.True(t, ok)
	assert.Equal(t, 1000, c.Stats()["item_count"])

	c.Flush()
	assert.Equal(t, 0, c.Stats()["item_count"])
}
