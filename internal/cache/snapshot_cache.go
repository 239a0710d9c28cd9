package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/utrading/utrading-liquidity-dashboard/internal/fetcher"
	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

const cacheTypeSnapshot = "snapshot"

// Entry 一次上游快照，创建后不可修改
type Entry struct {
	URL       string
	Records   []models.BankLiquidityRecord
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Expired now >= ExpiresAt 即过期
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// SnapshotCache 按 URL 缓存快照，TTL 内复用同一个 Entry
type SnapshotCache struct {
	fetcher fetcher.Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*Entry
	errs    map[string]error // 最近一次拉取错误，仅用于状态展示
	group   singleflight.Group

	hookMu sync.RWMutex
	hooks  []func(*Entry)
}

// NewSnapshotCache 创建快照缓存
func NewSnapshotCache(f fetcher.Fetcher, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		fetcher: f,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*Entry),
		errs:    make(map[string]error),
	}
}

// SetClock 替换时钟（测试用）
func (c *SnapshotCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL 缓存有效期
func (c *SnapshotCache) TTL() time.Duration {
	return c.ttl
}

// OnRefresh 注册刷新回调，每次成功拉取后按注册顺序调用
func (c *SnapshotCache) OnRefresh(fn func(*Entry)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Get 未过期直接返回，否则拉取上游；同一 URL 的并发未命中只发起一次请求
func (c *SnapshotCache) Get(ctx context.Context, url string) (*Entry, error) {
	if e := c.fresh(url); e != nil {
		monitor.IncCacheHit(cacheTypeSnapshot)
		return e, nil
	}
	monitor.IncCacheMiss(cacheTypeSnapshot)

	ch := c.group.DoChan(url, func() (any, error) {
		// 等待期间可能已被其他调用者刷新
		if e := c.fresh(url); e != nil {
			return e, nil
		}
		return c.refresh(context.WithoutCancel(ctx), url)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Entry), nil
	}
}

// Peek 返回当前条目（可能已过期），不触发拉取
func (c *SnapshotCache) Peek(url string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	return e, ok
}

// LastError 最近一次拉取失败的错误，成功后清空
func (c *SnapshotCache) LastError(url string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs[url]
}

// Invalidate 丢弃条目，下次 Get 重新拉取
func (c *SnapshotCache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

func (c *SnapshotCache) fresh(url string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	if !ok || e.Expired(c.now()) {
		return nil
	}
	return e
}

func (c *SnapshotCache) refresh(ctx context.Context, url string) (*Entry, error) {
	records, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		// 错误不缓存，保留旧条目
		c.mu.Lock()
		c.errs[url] = err
		c.mu.Unlock()
		logger.Error().Err(err).Str("url", url).Msg("fetch snapshot failed")
		return nil, err
	}

	c.mu.Lock()
	now := c.now()
	e := &Entry{
		URL:       url,
		Records:   records,
		FetchedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.entries[url] = e
	delete(c.errs, url)
	c.mu.Unlock()

	monitor.SetSnapshot(len(records), e.FetchedAt)
	logger.Info().
		Str("url", url).
		Int("records", len(records)).
		Time("expires_at", e.ExpiresAt).
		Msg("snapshot refreshed")

	c.hookMu.RLock()
	hooks := make([]func(*Entry), len(c.hooks))
	copy(hooks, c.hooks)
	c.hookMu.RUnlock()

	for _, fn := range hooks {
		fn(e)
	}
	return e, nil
}
