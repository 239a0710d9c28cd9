package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/utrading/utrading-liquidity-dashboard/internal/cache"
	"github.com/utrading/utrading-liquidity-dashboard/internal/chart"
	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/internal/render"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

// Config Service 依赖
type Config struct {
	URL      string
	Options  Options
	Snapshot *cache.SnapshotCache
	Charts   *cache.ChartCache
	Renderer *render.Renderer
	// Defaults 默认阈值，每次调用时读取以跟随配置热更新；nil 时全为 0
	Defaults func() table.Thresholds
}

// Service 把快照缓存、视图生成和图片渲染串起来
type Service struct {
	url      string
	opts     Options
	snapshot *cache.SnapshotCache
	charts   *cache.ChartCache
	renderer *render.Renderer
	defaults func() table.Thresholds
}

func NewService(cfg Config) *Service {
	if cfg.Defaults == nil {
		cfg.Defaults = func() table.Thresholds { return table.Thresholds{} }
	}
	return &Service{
		url:      cfg.URL,
		opts:     cfg.Options,
		snapshot: cfg.Snapshot,
		charts:   cfg.Charts,
		renderer: cfg.Renderer,
		defaults: cfg.Defaults,
	}
}

// URL 上游地址
func (s *Service) URL() string {
	return s.url
}

// Defaults 当前默认阈值
func (s *Service) Defaults() table.Thresholds {
	return s.defaults()
}

// Snapshot 经缓存获取快照
func (s *Service) Snapshot(ctx context.Context) (*cache.Entry, error) {
	return s.snapshot.Get(ctx, s.url)
}

// View 当前快照在给定阈值下的视图
func (s *Service) View(ctx context.Context, th table.Thresholds) (View, error) {
	if err := th.Validate(); err != nil {
		return View{}, err
	}

	entry, err := s.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}

	v := Build(entry.Records, th, s.opts)
	v.FetchedAt = entry.FetchedAt
	v.ExpiresAt = entry.ExpiresAt
	monitor.SetFilteredRows(len(v.Filtered))
	return v, nil
}

// Chart 渲染单张图，结果按 (类型, 格式, 快照时间, 阈值) 缓存
func (s *Service) Chart(ctx context.Context, kind chart.Kind, format render.Format, th table.Thresholds) (cache.Image, error) {
	if err := th.Validate(); err != nil {
		return cache.Image{}, err
	}

	entry, err := s.Snapshot(ctx)
	if err != nil {
		return cache.Image{}, err
	}

	key := chartKey(kind, format, entry, th)
	if img, ok := s.charts.Get(key); ok {
		return img, nil
	}

	v := Build(entry.Records, th, s.opts)
	data, err := s.renderer.Render(v.Charts, kind, format)
	if err != nil {
		return cache.Image{}, err
	}

	img := cache.Image{ContentType: format.ContentType(), Data: data}
	s.charts.Set(key, img)
	return img, nil
}

// Warm 拉取快照并按默认阈值预渲染全部 SVG
func (s *Service) Warm(ctx context.Context) error {
	start := time.Now()

	entry, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("warm snapshot: %w", err)
	}

	th := s.Defaults()
	v := Build(entry.Records, th, s.opts)
	results, err := s.renderer.RenderAll(ctx, v.Charts, render.FormatSVG)
	if err != nil {
		return fmt.Errorf("warm charts: %w", err)
	}

	rendered := 0
	for _, res := range results {
		if res.Err != nil {
			logger.Debug().Err(res.Err).Str("kind", res.Kind.String()).Msg("skip warm chart")
			continue
		}
		s.charts.Set(chartKey(res.Kind, render.FormatSVG, entry, th), cache.Image{
			ContentType: render.FormatSVG.ContentType(),
			Data:        res.Data,
		})
		rendered++
	}

	logger.Info().
		Int("charts", rendered).
		Int("rows", len(v.Filtered)).
		Dur("elapsed", time.Since(start)).
		Msg("dashboard warmed")
	return nil
}

// SnapshotStatus 供健康检查使用
func (s *Service) SnapshotStatus() monitor.SnapshotStatus {
	status := monitor.SnapshotStatus{URL: s.url}

	if e, ok := s.snapshot.Peek(s.url); ok {
		status.Loaded = true
		status.Records = len(e.Records)
		status.FetchedAt = e.FetchedAt.Format(time.RFC3339)
		status.ExpiresAt = e.ExpiresAt.Format(time.RFC3339)
	}
	if err := s.snapshot.LastError(s.url); err != nil {
		status.LastError = err.Error()
	}
	return status
}

func chartKey(kind chart.Kind, format render.Format, entry *cache.Entry, th table.Thresholds) cache.ChartKey {
	return cache.ChartKey{
		Kind:      kind.String(),
		Format:    string(format),
		FetchedAt: entry.FetchedAt,
		MinShort:  th.MinShortLiquidity,
		MinLong:   th.MinLongLiquidity,
		MinFDV:    th.MinFDV,
	}
}
