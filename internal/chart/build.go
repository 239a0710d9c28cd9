package chart

import (
	"sort"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
)

// DefaultTopN 饼图默认扇区数
const DefaultTopN = 10

// CorrelationLabels 相关矩阵的行列顺序
var CorrelationLabels = []string{"Short Liquidity", "Long Liquidity", "FDV", "Liquidity Ratio"}

// RatioBar 按比值降序（稳定），比值非有限的行不画
func RatioBar(rows table.Table) BarChart {
	sorted := rows.Sort(table.ColumnLiquidityRatio, true)

	bars := make([]Bar, 0, len(sorted))
	for _, r := range sorted {
		v := float64(r.LiquidityRatio)
		if !isFinite(v) {
			continue
		}
		bars = append(bars, Bar{Label: r.Symbol, Value: v})
	}

	return BarChart{
		Title:  TitleRatioBar,
		XLabel: "Symbol",
		YLabel: "Long/Short Ratio",
		Bars:   bars,
	}
}

// FDVPie FDV 最大的 n 个资产，n <= 0 时取 DefaultTopN；相同 FDV 保持表格顺序
func FDVPie(rows table.Table, n int) PieChart {
	if n <= 0 {
		n = DefaultTopN
	}

	candidates := make(table.Table, 0, len(rows))
	for _, r := range rows {
		if positive(float64(r.FDV)) {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FDV > candidates[j].FDV
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	var total float64
	for _, r := range candidates {
		total += float64(r.FDV)
	}

	slices := make([]Slice, 0, len(candidates))
	for _, r := range candidates {
		slices = append(slices, Slice{
			Label: r.Symbol,
			Value: float64(r.FDV),
			Share: float64(r.FDV) / total,
		})
	}

	return PieChart{
		Title:  TitleFDVPie,
		Total:  total,
		Slices: slices,
	}
}

// LiquidityScatter 双对数坐标，任一坐标非正的点无法落在对数轴上
func LiquidityScatter(rows table.Table) ScatterChart {
	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		x, y := float64(r.ShortLiquidity), float64(r.LongLiquidity)
		if !positive(x) || !positive(y) {
			continue
		}
		points = append(points, Point{Label: r.Symbol, X: x, Y: y})
	}

	return ScatterChart{
		Title:  TitleScatter,
		XLabel: "Short Liquidity",
		YLabel: "Long Liquidity",
		LogX:   true,
		LogY:   true,
		Points: points,
	}
}

// LiquidityBox Short / Long 两个箱体，对数 y 轴，只统计正值
func LiquidityBox(rows table.Table) BoxChart {
	var short, long []float64
	for _, r := range rows {
		if v := float64(r.ShortLiquidity); positive(v) {
			short = append(short, v)
		}
		if v := float64(r.LongLiquidity); positive(v) {
			long = append(long, v)
		}
	}

	return BoxChart{
		Title:  TitleBox,
		YLabel: "Liquidity ($)",
		LogY:   true,
		Boxes: []BoxStats{
			boxStats("Short Liquidity", short),
			boxStats("Long Liquidity", long),
		},
	}
}

// CorrelationHeatmap 四个指标的 Pearson 相关矩阵
func CorrelationHeatmap(rows table.Table) Heatmap {
	columns := make([][]float64, len(CorrelationLabels))
	for i := range columns {
		columns[i] = make([]float64, len(rows))
	}
	for j, r := range rows {
		columns[0][j] = float64(r.ShortLiquidity)
		columns[1][j] = float64(r.LongLiquidity)
		columns[2][j] = float64(r.FDV)
		columns[3][j] = float64(r.LiquidityRatio)
	}

	values := make([][]models.Float, len(columns))
	for i := range columns {
		values[i] = make([]models.Float, len(columns))
	}
	for i := range columns {
		for j := i; j < len(columns); j++ {
			r := pearson(columns[i], columns[j])
			if i == j && isFinite(r) {
				r = 1
			}
			values[i][j] = models.Float(r)
			values[j][i] = models.Float(r)
		}
	}

	labels := make([]string, len(CorrelationLabels))
	copy(labels, CorrelationLabels)

	return Heatmap{
		Title:  TitleCorrelation,
		Labels: labels,
		Values: values,
	}
}

// BuildAll 由过滤后的表生成五张图
func BuildAll(rows table.Table, topN int) Set {
	return Set{
		RatioBar:    RatioBar(rows),
		FDVPie:      FDVPie(rows, topN),
		Scatter:     LiquidityScatter(rows),
		Box:         LiquidityBox(rows),
		Correlation: CorrelationHeatmap(rows),
	}
}
