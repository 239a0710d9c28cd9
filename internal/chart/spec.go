package chart

import (
	"fmt"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
)

// Bar 柱状图的一根柱子
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type BarChart struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Bars   []Bar  `json:"bars"`
}

func (c BarChart) Empty() bool { return len(c.Bars) == 0 }

// Slice 饼图扇区，Share 为占展示总额的比例
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

type PieChart struct {
	Title  string  `json:"title"`
	Total  float64 `json:"total"`
	Slices []Slice `json:"slices"`
}

func (c PieChart) Empty() bool { return len(c.Slices) == 0 }

type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type ScatterChart struct {
	Title  string  `json:"title"`
	XLabel string  `json:"x_label"`
	YLabel string  `json:"y_label"`
	LogX   bool    `json:"log_x"`
	LogY   bool    `json:"log_y"`
	Points []Point `json:"points"`
}

func (c ScatterChart) Empty() bool { return len(c.Points) == 0 }

// BoxStats 一个箱体：四分位数线性插值，须线为 1.5×IQR 内的最远数据点
type BoxStats struct {
	Name         string    `json:"name"`
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

type BoxChart struct {
	Title  string     `json:"title"`
	YLabel string     `json:"y_label"`
	LogY   bool       `json:"log_y"`
	Boxes  []BoxStats `json:"boxes"`
}

// Empty 两个箱体都没有数据
func (c BoxChart) Empty() bool {
	for _, b := range c.Boxes {
		if b.Count > 0 {
			return false
		}
	}
	return true
}

// Heatmap 方阵，无法计算的单元为 NaN（JSON 中为 null）
type Heatmap struct {
	Title  string           `json:"title"`
	Labels []string         `json:"labels"`
	Values [][]models.Float `json:"values"`
}

// Empty 所有单元都不可计算
func (c Heatmap) Empty() bool {
	for _, row := range c.Values {
		for _, v := range row {
			if v.IsFinite() {
				return false
			}
		}
	}
	return true
}

// Set 五张图
type Set struct {
	RatioBar    BarChart     `json:"liquidity_ratio"`
	FDVPie      PieChart     `json:"fdv_pie"`
	Scatter     ScatterChart `json:"liquidity_scatter"`
	Box         BoxChart     `json:"liquidity_box"`
	Correlation Heatmap      `json:"correlation"`
}

// Spec 按类型取图表定义
func (s Set) Spec(kind Kind) (any, error) {
	switch kind {
	case KindRatioBar:
		return s.RatioBar, nil
	case KindFDVPie:
		return s.FDVPie, nil
	case KindScatter:
		return s.Scatter, nil
	case KindBox:
		return s.Box, nil
	case KindCorrelation:
		return s.Correlation, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
