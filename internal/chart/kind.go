package chart

import (
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown chart kind")

// Kind 图表类型，同时用作 URL 路径和缓存键
type Kind string

const (
	KindRatioBar    Kind = "liquidity_ratio"
	KindFDVPie      Kind = "fdv_pie"
	KindScatter     Kind = "liquidity_scatter"
	KindBox         Kind = "liquidity_box"
	KindCorrelation Kind = "correlation"
)

// Kinds 页面展示顺序
var Kinds = []Kind{KindRatioBar, KindFDVPie, KindScatter, KindBox, KindCorrelation}

// 图表标题
const (
	TitleRatioBar    = "Long vs Short Liquidity Ratio"
	TitleFDVPie      = "Top 10 Assets by FDV"
	TitleScatter     = "Short vs Long Liquidity (Log Scale)"
	TitleBox         = "Distribution of Short and Long Liquidity"
	TitleCorrelation = "Correlation Heatmap"
)

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Title() string {
	switch k {
	case KindRatioBar:
		return TitleRatioBar
	case KindFDVPie:
		return TitleFDVPie
	case KindScatter:
		return TitleScatter
	case KindBox:
		return TitleBox
	case KindCorrelation:
		return TitleCorrelation
	default:
		return string(k)
	}
}
