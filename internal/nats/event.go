package nats

import (
	"encoding/json"
	"math"
	"time"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

const TopicLiquiditySnapshot = "liquidity_snapshot"

// SnapshotEvent 快照刷新消息
type SnapshotEvent struct {
	URL                 string  `json:"url"`                   // 上游地址
	FetchedAt           int64   `json:"fetched_at"`            // 拉取时间（毫秒）
	ExpiresAt           int64   `json:"expires_at"`            // 过期时间（毫秒）
	Records             int     `json:"records"`               // 记录数
	TotalShortLiquidity float64 `json:"total_short_liquidity"` // 忽略 NaN
	TotalLongLiquidity  float64 `json:"total_long_liquidity"`
	TotalFDV            float64 `json:"total_fdv"`
}

// NewSnapshotEvent 汇总一次快照
func NewSnapshotEvent(url string, records []models.BankLiquidityRecord, fetchedAt, expiresAt time.Time) *SnapshotEvent {
	e := &SnapshotEvent{
		URL:       url,
		FetchedAt: fetchedAt.UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
		Records:   len(records),
	}
	for _, r := range records {
		e.TotalShortLiquidity += finiteOrZero(float64(r.ShortLiquidity))
		e.TotalLongLiquidity += finiteOrZero(float64(r.LongLiquidity))
		e.TotalFDV += finiteOrZero(float64(r.FDV))
	}
	return e
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Marshal 序列化事件
func (e *SnapshotEvent) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Error().Err(err).Msg("marshal snapshot event failed")
		return nil, err
	}
	return data, nil
}
