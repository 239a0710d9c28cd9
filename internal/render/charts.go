package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	dchart "github.com/utrading/utrading-liquidity-dashboard/internal/chart"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
)

func (r *Renderer) bar(spec dchart.BarChart, format Format, w io.Writer) error {
	if spec.Empty() {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, len(spec.Bars))
	var maxV float64
	for i, b := range spec.Bars {
		bars = append(bars, chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   paletteColor(0),
				StrokeColor: paletteColor(0),
				StrokeWidth: 0,
			},
		})
		if i == 0 || b.Value > maxV {
			maxV = b.Value
		}
	}

	// 柱宽随数量收缩，保证画布放得下
	slot := (r.width - 120) / len(bars)
	barWidth := int(math.Max(4, float64(slot)*0.7))
	spacing := int(math.Max(1, float64(slot-barWidth)))

	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 60}},
		BarWidth:   barWidth,
		BarSpacing: spacing,
		XAxis: chart.Style{
			TextRotationDegrees: 45.0,
			FontSize:            8,
		},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: niceMax(maxV)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return bc.Render(format.provider(), w)
}

func (r *Renderer) pie(spec dchart.PieChart, format Format, w io.Writer) error {
	if spec.Empty() {
		return ErrNoData
	}

	values := make([]chart.Value, 0, len(spec.Slices))
	for i, s := range spec.Slices {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", s.Label, s.Share*100),
			Value: s.Value,
			Style: chart.Style{
				FillColor:   paletteColor(i),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		})
	}

	pc := chart.PieChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: background(),
		Values:     values,
	}
	return pc.Render(format.provider(), w)
}

func (r *Renderer) scatter(spec dchart.ScatterChart, format Format, w io.Writer) error {
	if spec.Empty() {
		return ErrNoData
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Points {
		minV = math.Min(minV, math.Min(p.X, p.Y))
		maxV = math.Max(maxV, math.Max(p.X, p.Y))
	}
	rng, ticks := logAxis(minV, maxV)

	series := make([]chart.Series, 0, len(spec.Points)+2)
	// 对角线：Long = Short
	series = append(series, chart.ContinuousSeries{
		Name:    "Long = Short",
		XValues: []float64{rng.Min, rng.Max},
		YValues: []float64{rng.Min, rng.Max},
		Style: chart.Style{
			StrokeWidth:     1,
			StrokeColor:     drawing.ColorFromHex("999999"),
			StrokeDashArray: []float64{4, 4},
		},
	})

	annotations := make([]chart.Value2, 0, len(spec.Points))
	for i, p := range spec.Points {
		x, y := math.Log10(p.X), math.Log10(p.Y)
		series = append(series, chart.ContinuousSeries{
			Name:    p.Label,
			XValues: []float64{x},
			YValues: []float64{y},
			Style:   pointStyle(paletteColor(i)),
		})
		annotations = append(annotations, chart.Value2{XValue: x, YValue: y, Label: p.Label})
	}
	series = append(series, chart.AnnotationSeries{Annotations: annotations})

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: background(),
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: rng, Ticks: ticks},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: rng.Min, Max: rng.Max}, Ticks: ticks},
		Series:     series,
	}
	return ch.Render(format.provider(), w)
}

// box 每个箱体由矩形、中位线、须线和离群点组成，y 为 log10 值
func (r *Renderer) box(spec dchart.BoxChart, format Format, w io.Writer) error {
	if spec.Empty() {
		return ErrNoData
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, b := range spec.Boxes {
		if b.Count == 0 {
			continue
		}
		minV = math.Min(minV, b.Min)
		maxV = math.Max(maxV, b.Max)
	}
	rng, yTicks := logAxis(minV, maxV)

	const half = 0.25
	var series []chart.Series
	xTicks := []chart.Tick{{Value: 0.5, Label: ""}}

	for i, b := range spec.Boxes {
		x := float64(i + 1)
		xTicks = append(xTicks, chart.Tick{Value: x, Label: b.Name})
		if b.Count == 0 {
			continue
		}

		col := paletteColor(i)
		q1, med, q3 := math.Log10(b.Q1), math.Log10(b.Median), math.Log10(b.Q3)
		lo, hi := math.Log10(b.LowerWhisker), math.Log10(b.UpperWhisker)

		series = append(series,
			chart.ContinuousSeries{
				Name:    b.Name,
				XValues: []float64{x - half, x + half, x + half, x - half, x - half},
				YValues: []float64{q1, q1, q3, q3, q1},
				Style:   lineStyle(col, 2),
			},
			chart.ContinuousSeries{
				XValues: []float64{x - half, x + half},
				YValues: []float64{med, med},
				Style:   lineStyle(col, 3),
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{q3, hi},
				Style:   lineStyle(col, 1),
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{q1, lo},
				Style:   lineStyle(col, 1),
			},
			chart.ContinuousSeries{
				XValues: []float64{x - half/2, x + half/2},
				YValues: []float64{hi, hi},
				Style:   lineStyle(col, 1),
			},
			chart.ContinuousSeries{
				XValues: []float64{x - half/2, x + half/2},
				YValues: []float64{lo, lo},
				Style:   lineStyle(col, 1),
			},
		)

		// 离群点逐个成系列，避免被连成线
		for _, v := range b.Outliers {
			series = append(series, chart.ContinuousSeries{
				XValues: []float64{x},
				YValues: []float64{math.Log10(v)},
				Style:   pointStyle(col),
			})
		}
	}
	xTicks = append(xTicks, chart.Tick{Value: float64(len(spec.Boxes)) + 0.5, Label: ""})

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: background(),
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(spec.Boxes)) + 0.5},
			Ticks: xTicks,
		},
		YAxis:  chart.YAxis{Name: spec.YLabel, Range: rng, Ticks: yTicks},
		Series: series,
	}
	return ch.Render(format.provider(), w)
}

// heatmap go-chart 没有热力图，直接在 Renderer 上画单元格
func (r *Renderer) heatmap(spec dchart.Heatmap, format Format, w io.Writer) error {
	if spec.Empty() {
		return ErrNoData
	}

	rr, err := format.provider()(r.width, r.height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	rr.SetFont(font)

	const (
		top      = 50
		left     = 130
		right    = 90
		bottom   = 40
		barWidth = 16
	)

	fillRect(rr, 0, 0, r.width, r.height, drawing.ColorWhite)

	rr.SetFontColor(drawing.ColorBlack)
	rr.SetFontSize(14)
	tb := rr.MeasureText(spec.Title)
	rr.Text(spec.Title, (r.width-tb.Width())/2, 28)

	n := len(spec.Labels)
	cellW := (r.width - left - right) / n
	cellH := (r.height - top - bottom) / n

	rr.SetFontSize(10)
	for i := 0; i < n; i++ {
		y0 := top + i*cellH
		for j := 0; j < n; j++ {
			x0 := left + j*cellW
			v := float64(spec.Values[i][j])
			fillRect(rr, x0, y0, x0+cellW, y0+cellH, divergingColor(v))

			text := table.FormatRatio(v)
			if math.Abs(v) > 0.5 {
				rr.SetFontColor(drawing.ColorWhite)
			} else {
				rr.SetFontColor(drawing.ColorBlack)
			}
			mb := rr.MeasureText(text)
			rr.Text(text, x0+(cellW-mb.Width())/2, y0+(cellH+mb.Height())/2)
		}

		rr.SetFontColor(drawing.ColorBlack)
		lb := rr.MeasureText(spec.Labels[i])
		rr.Text(spec.Labels[i], left-lb.Width()-8, y0+(cellH+lb.Height())/2)
	}
	for j := 0; j < n; j++ {
		lb := rr.MeasureText(spec.Labels[j])
		rr.Text(spec.Labels[j], left+j*cellW+(cellW-lb.Width())/2, top+n*cellH+lb.Height()+8)
	}

	// 色标
	barX := left + n*cellW + 24
	barH := n * cellH
	const steps = 40
	for s := 0; s < steps; s++ {
		v := 1 - 2*float64(s)/steps
		y0 := top + s*barH/steps
		y1 := top + (s+1)*barH/steps
		fillRect(rr, barX, y0, barX+barWidth, y1, divergingColor(v))
	}
	for _, tick := range []float64{1, 0, -1} {
		label := fmt.Sprintf("%.0f", tick)
		y := top + int((1-tick)/2*float64(barH))
		rr.Text(label, barX+barWidth+6, y+4)
	}

	return rr.Save(w)
}

func fillRect(rr chart.Renderer, x0, y0, x1, y1 int, col drawing.Color) {
	rr.SetFillColor(col)
	rr.SetStrokeColor(col)
	rr.SetStrokeWidth(0)
	rr.MoveTo(x0, y0)
	rr.LineTo(x1, y0)
	rr.LineTo(x1, y1)
	rr.LineTo(x0, y1)
	rr.LineTo(x0, y0)
	rr.Close()
	rr.Fill()
}
