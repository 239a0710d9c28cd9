package dashboard

import (
	"time"

	"github.com/utrading/utrading-liquidity-dashboard/internal/chart"
	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
)

// Options 生成视图的参数
type Options struct {
	TopN int // 饼图扇区数
}

// View 一次请求的完整结果：全表、过滤后的表和五张图
type View struct {
	Thresholds table.Thresholds `json:"thresholds"`
	Table      table.Table      `json:"table"`
	Filtered   table.Table      `json:"filtered"`
	Charts     chart.Set        `json:"charts"`
	FetchedAt  time.Time        `json:"fetched_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

// Build 纯函数：派生列、过滤、生成图表，不做 IO
func Build(records []models.BankLiquidityRecord, th table.Thresholds, opts Options) View {
	full := table.Derive(records)
	filtered := table.Filter(full, th)

	return View{
		Thresholds: th,
		Table:      full,
		Filtered:   filtered,
		Charts:     chart.BuildAll(filtered, opts.TopN),
	}
}
