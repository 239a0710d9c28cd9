package chart

import (
	"math"
	"sort"
)

// quantile 已排序数据的线性插值分位数，位置 p*(n-1)
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// boxStats 计算箱线图统计量，values 无需排序；无数据时统计量全为 0
func boxStats(name string, values []float64) BoxStats {
	b := BoxStats{Name: name, Count: len(values), Outliers: []float64{}}
	if len(values) == 0 {
		return b
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	b.Min = sorted[0]
	b.Max = sorted[len(sorted)-1]
	b.Q1 = quantile(sorted, 0.25)
	b.Median = quantile(sorted, 0.5)
	b.Q3 = quantile(sorted, 0.75)

	iqr := b.Q3 - b.Q1
	lowFence := b.Q1 - 1.5*iqr
	highFence := b.Q3 + 1.5*iqr

	b.LowerWhisker = b.Q1
	b.UpperWhisker = b.Q3
	for _, v := range sorted {
		if v >= lowFence {
			b.LowerWhisker = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			b.UpperWhisker = math.Max(sorted[i], b.Q3)
			break
		}
	}

	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// pearson 成对完整的有限观测；少于 2 对或方差为 0 时为 NaN
func pearson(xs, ys []float64) float64 {
	var n, sx, sy float64
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		n++
		sx += xs[i]
		sy += ys[i]
	}
	if n < 2 {
		return math.NaN()
	}

	mx, my := sx/n, sy/n
	var cov, vx, vy float64
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}

	r := cov / math.Sqrt(vx*vy)
	// 浮点误差可能略超出 [-1, 1]
	return math.Max(-1, math.Min(1, r))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return isFinite(v) && v > 0
}
