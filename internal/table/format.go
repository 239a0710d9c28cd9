package table

import (
	"fmt"
	"math"
)

// FormatLargeNumber 美元金额缩写：B / M / K，非有限值为 N/A
func FormatLargeNumber(v float64) string {
	if !isFinite(v) {
		return "N/A"
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// FormatRatio 两位小数
func FormatRatio(v float64) string {
	if !isFinite(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
