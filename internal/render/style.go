package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
)

// palette 分类配色
var palette = []drawing.Color{
	drawing.ColorFromHex("636efa"),
	drawing.ColorFromHex("ef553b"),
	drawing.ColorFromHex("00cc96"),
	drawing.ColorFromHex("ab63fa"),
	drawing.ColorFromHex("ffa15a"),
	drawing.ColorFromHex("19d3f3"),
	drawing.ColorFromHex("ff6692"),
	drawing.ColorFromHex("b6e880"),
	drawing.ColorFromHex("ff97ff"),
	drawing.ColorFromHex("fecb52"),
}

func paletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// pointStyle 只画点不画线
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    5,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: width,
		StrokeColor: col,
	}
}

// logAxis 数值取 log10 后画在线性轴上，刻度为 10 的整数次幂
func logAxis(minV, maxV float64) (*chart.ContinuousRange, []chart.Tick) {
	lo := math.Floor(math.Log10(minV))
	hi := math.Ceil(math.Log10(maxV))
	if hi <= lo {
		hi = lo + 1
	}

	ticks := make([]chart.Tick, 0, int(hi-lo)+1)
	for k := lo; k <= hi; k++ {
		ticks = append(ticks, chart.Tick{Value: k, Label: table.FormatLargeNumber(math.Pow(10, k))})
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}, ticks
}

// niceMax 线性轴上界取 1/2/5×10^k
func niceMax(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}

// divergingColor -1 深蓝，0 白，1 深红
func divergingColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		return drawing.ColorFromHex("d9d9d9")
	}
	v = math.Max(-1, math.Min(1, v))

	white := drawing.Color{R: 247, G: 247, B: 247, A: 255}
	red := drawing.Color{R: 103, G: 0, B: 31, A: 255}
	blue := drawing.Color{R: 5, G: 48, B: 97, A: 255}

	if v >= 0 {
		return lerpColor(white, red, v)
	}
	return lerpColor(white, blue, -v)
}

func lerpColor(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
