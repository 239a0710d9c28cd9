package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/utrading/utrading-liquidity-dashboard/config"
	"github.com/utrading/utrading-liquidity-dashboard/internal/cache"
	"github.com/utrading/utrading-liquidity-dashboard/internal/dashboard"
	"github.com/utrading/utrading-liquidity-dashboard/internal/fetcher"
	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/internal/nats"
	"github.com/utrading/utrading-liquidity-dashboard/internal/prefetch"
	"github.com/utrading/utrading-liquidity-dashboard/internal/render"
	"github.com/utrading/utrading-liquidity-dashboard/internal/server"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
	"github.com/utrading/utrading-liquidity-dashboard/internal/ws"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/goplus"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/sigproc"
)

func main() {
	var configFile string
	var renderDir string
	flag.StringVar(&configFile, "config", "cfg.toml", "config file path")
	flag.StringVar(&renderDir, "render-dir", "", "fetch once, write all charts as SVG into this directory and exit")
	flag.Parse()

	// .env 可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("load .env failed: " + err.Error())
	}

	// 加载配置
	if err := config.Init(configFile); err != nil {
		panic(err)
	}
	cfg := config.Get()

	// 初始化日志
	if err := initLogger(cfg); err != nil {
		panic("init logger failed: " + err.Error())
	}
	defer logger.Close()

	logger.Info().Msg("liquidity_dashboard service starting...")

	// 初始化指标
	monitor.InitMetrics()

	snapshots := cache.NewSnapshotCache(fetcher.NewHTTPFetcher(cfg.Dashboard.FetchTimeout), cfg.Dashboard.CacheTTL)
	charts := cache.NewChartCache(cfg.Dashboard.CacheTTL)
	renderer := render.New(render.Options{
		Width:    cfg.Dashboard.ChartWidth,
		Height:   cfg.Dashboard.ChartHeight,
		PoolSize: cfg.Dashboard.RenderPoolSize,
	})
	defer renderer.Release()

	svc := dashboard.NewService(dashboard.Config{
		URL:      cfg.Dashboard.Endpoint,
		Options:  dashboard.Options{TopN: cfg.Dashboard.TopN},
		Snapshot: snapshots,
		Charts:   charts,
		Renderer: renderer,
		Defaults: defaultThresholds,
	})

	if renderDir != "" {
		config.Stop()
		if err := renderOnce(svc, renderer, renderDir, cfg.Dashboard.FetchTimeout); err != nil {
			logger.Fatal().Err(err).Msg("render charts failed")
		}
		return
	}

	// 初始化 NATS（可选）
	var publisher *nats.Publisher
	if cfg.NATS.Endpoint != "" {
		var err error
		publisher, err = nats.NewPublisher(cfg.NATS.Endpoint, cfg.NATS.Subject)
		if err != nil {
			logger.Fatal().Err(err).Msg("init nats publisher failed")
		}
		defer publisher.Close()
	}

	hub := ws.NewHub()

	// 快照刷新后清理旧图片，并通知页面与下游
	snapshots.OnRefresh(func(e *cache.Entry) {
		charts.Flush()
		hub.Broadcast(ws.SnapshotRefreshed(e.URL, len(e.Records), e.FetchedAt, e.ExpiresAt))
		if publisher == nil {
			return
		}
		// 失败已在 publisher 内记录
		_ = publisher.PublishSnapshot(nats.NewSnapshotEvent(e.URL, e.Records, e.FetchedAt, e.ExpiresAt))
	})

	// nil *Publisher 不能直接赋给接口
	var publisherRef monitor.PublisherRef
	if publisher != nil {
		publisherRef = publisher
	}
	health := monitor.NewHealth(svc, publisherRef, hub)

	srv := server.New(cfg.Dashboard.ListenAddr, svc, hub, health)
	srv.Start()

	prefetcher, err := prefetch.New(svc, cfg.Dashboard.PrefetchInterval, cfg.Dashboard.FetchTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("init prefetch failed")
	}
	if prefetcher != nil {
		prefetcher.Start()
	} else {
		// 未开启定时预取时仅启动预热一次
		goplus.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Dashboard.FetchTimeout)
			defer cancel()
			if err := svc.Warm(ctx); err != nil {
				logger.Warn().Err(err).Msg("initial warm failed")
			}
		})
	}

	logger.Info().
		Str("endpoint", cfg.Dashboard.Endpoint).
		Str("listen_addr", cfg.Dashboard.ListenAddr).
		Dur("cache_ttl", cfg.Dashboard.CacheTTL).
		Bool("nats", publisher != nil).
		Msg("liquidity_dashboard service started successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 优雅关闭
	sigproc.GracefulShutdown(15*time.Second, func(sig os.Signal) {
		logger.Info().Str("signal", sig.String()).Msg("shutting down...")

		health.SetHealthy(false)

		if prefetcher != nil {
			if err := prefetcher.Stop(); err != nil {
				logger.Warn().Err(err).Msg("stop prefetch failed")
			}
		}

		// 关闭 HTTP 服务
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http shutdown failed")
		}

		// 断开页面连接
		hub.Close()

		// 关闭配置重载
		config.Stop()

		if publisher != nil {
			publisher.Close()
		}

		// 等待后台协程退出
		if !goplus.WaitTimeout(3 * time.Second) {
			logger.Warn().Msg("background goroutines still running")
		}

		renderer.Release()
		logger.Info().Msg("liquidity_dashboard service stopped")
		logger.Close()
		cancel()
	})

	<-ctx.Done()
}

// defaultThresholds 每次读取最新配置，配置文件热更新后立即生效
func defaultThresholds() table.Thresholds {
	f := config.Get().Filters
	return table.Thresholds{
		MinShortLiquidity: f.MinShortLiquidity,
		MinLongLiquidity:  f.MinLongLiquidity,
		MinFDV:            f.MinFDV,
	}
}

// renderOnce 拉取一次快照，按默认阈值写出五张 SVG
func renderOnce(svc *dashboard.Service, renderer *render.Renderer, dir string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, err := svc.View(ctx, svc.Defaults())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	results, err := renderer.RenderAll(ctx, v.Charts, render.FormatSVG)
	if err != nil {
		return err
	}

	for _, res := range results {
		if errors.Is(res.Err, render.ErrNoData) {
			logger.Warn().Str("kind", res.Kind.String()).Msg("chart has no data, skipped")
			continue
		}
		if res.Err != nil {
			return res.Err
		}

		path := filepath.Join(dir, res.Kind.String()+".svg")
		if err := os.WriteFile(path, res.Data, 0644); err != nil {
			return err
		}
		logger.Info().Str("path", path).Int("bytes", len(res.Data)).Msg("chart written")
	}
	return nil
}

func initLogger(cfg *config.Config) error {
	return logger.NewBuilder().
		SetMaxSize(cfg.Logger.MaxSize).
		SetMaxBackups(cfg.Logger.MaxBackups).
		SetMaxAge(cfg.Logger.MaxAge).
		SetLevel(cfg.Logger.Level).
		EnableCompression(cfg.Logger.Compress).
		EnableConsoleOutput(cfg.Logger.Console).
		Build()
}
