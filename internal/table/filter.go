package table

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

var ErrInvalidThreshold = errors.New("invalid threshold")

// 查询参数名
const (
	ParamMinShortLiquidity = "min_short_liquidity"
	ParamMinLongLiquidity  = "min_long_liquidity"
	ParamMinFDV            = "min_fdv"
)

// Thresholds 过滤下限，均为非负数
type Thresholds struct {
	MinShortLiquidity float64 `json:"min_short_liquidity"`
	MinLongLiquidity  float64 `json:"min_long_liquidity"`
	MinFDV            float64 `json:"min_fdv"`
}

// Validate 拒绝负数、NaN 与无穷大
func (th Thresholds) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{ParamMinShortLiquidity, th.MinShortLiquidity},
		{ParamMinLongLiquidity, th.MinLongLiquidity},
		{ParamMinFDV, th.MinFDV},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidThreshold, f.name, f.value)
		}
	}
	return nil
}

// Filter 保留三项原始指标都不低于阈值的行；NaN 永远不满足
func Filter(t Table, th Thresholds) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if float64(r.ShortLiquidity) >= th.MinShortLiquidity &&
			float64(r.LongLiquidity) >= th.MinLongLiquidity &&
			float64(r.FDV) >= th.MinFDV {
			out = append(out, r)
		}
	}
	return out
}

// ParseThresholds 从查询参数读取阈值，缺省使用 defaults
func ParseThresholds(values url.Values, defaults Thresholds) (Thresholds, error) {
	th := defaults
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{ParamMinShortLiquidity, &th.MinShortLiquidity},
		{ParamMinLongLiquidity, &th.MinLongLiquidity},
		{ParamMinFDV, &th.MinFDV},
	} {
		raw := strings.TrimSpace(values.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return Thresholds{}, fmt.Errorf("%w: %s=%q", ErrInvalidThreshold, f.name, raw)
		}
		*f.dst = v
	}

	if err := th.Validate(); err != nil {
		return Thresholds{}, err
	}
	return th, nil
}
