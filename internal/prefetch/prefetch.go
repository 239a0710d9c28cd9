package prefetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

// Warmer 预取并预渲染
type Warmer interface {
	Warm(ctx context.Context) error
}

// Prefetcher 定时预取快照，避免用户请求触发上游拉取
type Prefetcher struct {
	scheduler gocron.Scheduler
	interval  time.Duration
}

// New interval <= 0 时返回 nil，表示不启用
func New(w Warmer, interval, timeout time.Duration) (*Prefetcher, error) {
	if interval <= 0 {
		return nil, nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := w.Warm(ctx); err != nil {
				logger.Warn().Err(err).Msg("prefetch failed")
			}
		}),
		gocron.WithName("snapshot-prefetch"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("schedule prefetch job: %w", err)
	}

	return &Prefetcher{scheduler: s, interval: interval}, nil
}

func (p *Prefetcher) Start() {
	p.scheduler.Start()
	logger.Info().Dur("interval", p.interval).Msg("prefetch started")
}

func (p *Prefetcher) Stop() error {
	return p.scheduler.Shutdown()
}
