package table

import (
	"math"
	"sort"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
)

// 可排序列
const (
	ColumnSymbol         = "symbol"
	ColumnShortLiquidity = "short_liquidity"
	ColumnLongLiquidity  = "long_liquidity"
	ColumnFDV            = "fdv"
	ColumnLiquidityRatio = "liquidity_ratio"
)

// Columns 表头，顺序即页面展示顺序
var Columns = []struct {
	Key   string
	Title string
}{
	{ColumnSymbol, "Symbol"},
	{ColumnShortLiquidity, "Short Liquidity"},
	{ColumnLongLiquidity, "Long Liquidity"},
	{ColumnFDV, "FDV"},
	{ColumnLiquidityRatio, "Liquidity Ratio"},
}

// Row 一行：原始值用于过滤与绘图，格式化值用于展示
type Row struct {
	Symbol         string       `json:"symbol"`
	ShortLiquidity models.Float `json:"short_liquidity"`
	LongLiquidity  models.Float `json:"long_liquidity"`
	FDV            models.Float `json:"fdv"`
	LiquidityRatio models.Float `json:"liquidity_ratio"`

	ShortLiquidityFormatted string `json:"short_liquidity_formatted"`
	LongLiquidityFormatted  string `json:"long_liquidity_formatted"`
	FDVFormatted            string `json:"fdv_formatted"`
	LiquidityRatioFormatted string `json:"liquidity_ratio_formatted"`
}

// Table 行集合，保持上游顺序
type Table []Row

// Derive 每条记录生成一行，结果只依赖输入
func Derive(records []models.BankLiquidityRecord) Table {
	t := make(Table, 0, len(records))
	for _, r := range records {
		ratio := r.LiquidityRatio()
		t = append(t, Row{
			Symbol:                  r.TokenSymbol,
			ShortLiquidity:          r.ShortLiquidity,
			LongLiquidity:           r.LongLiquidity,
			FDV:                     r.FDV,
			LiquidityRatio:          models.Float(ratio),
			ShortLiquidityFormatted: FormatLargeNumber(float64(r.ShortLiquidity)),
			LongLiquidityFormatted:  FormatLargeNumber(float64(r.LongLiquidity)),
			FDVFormatted:            FormatLargeNumber(float64(r.FDV)),
			LiquidityRatioFormatted: FormatRatio(ratio),
		})
	}
	return t
}

// IsSortColumn 判断列名是否可排序
func IsSortColumn(column string) bool {
	for _, c := range Columns {
		if c.Key == column {
			return true
		}
	}
	return false
}

// Sort 返回排序后的副本（稳定）；未知列原样返回，NaN 不论升降序都排在末尾
func (t Table) Sort(column string, descending bool) Table {
	out := make(Table, len(t))
	copy(out, t)
	if !IsSortColumn(column) {
		return out
	}

	if column == ColumnSymbol {
		sort.SliceStable(out, func(i, j int) bool {
			if descending {
				return out[i].Symbol > out[j].Symbol
			}
			return out[i].Symbol < out[j].Symbol
		})
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value(column), out[j].Value(column)
		aBad, bBad := math.IsNaN(a), math.IsNaN(b)
		switch {
		case aBad || bBad:
			return !aBad && bBad
		case descending:
			return a > b
		default:
			return a < b
		}
	})
	return out
}

// Value 按列名取原始数值
func (r Row) Value(column string) float64 {
	switch column {
	case ColumnShortLiquidity:
		return float64(r.ShortLiquidity)
	case ColumnLongLiquidity:
		return float64(r.LongLiquidity)
	case ColumnFDV:
		return float64(r.FDV)
	case ColumnLiquidityRatio:
		return float64(r.LiquidityRatio)
	default:
		return math.NaN()
	}
}
