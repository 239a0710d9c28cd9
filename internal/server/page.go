package server

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/utrading/utrading-liquidity-dashboard/internal/chart"
	"github.com/utrading/utrading-liquidity-dashboard/internal/dashboard"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"fnum": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(templateFS, "templates/index.html"))

const pageTitle = "Marginfi Liquidity Dashboard"

// 每张图的说明文字
var chartNotes = map[chart.Kind]template.HTML{
	chart.KindRatioBar: `<p><strong>Explanation:</strong> The Liquidity Ratio is calculated as (Long Liquidity / Short Liquidity) for each asset.</p>
<ul><li>A ratio &gt; 1 indicates more long liquidity than short liquidity.</li>
<li>A ratio &lt; 1 indicates more short liquidity than long liquidity.</li>
<li>A ratio close to 1 suggests a balance between long and short liquidity.</li></ul>
<p><strong>Interpretation:</strong></p>
<ul><li>High ratios might indicate strong bullish sentiment or potential overbought conditions.</li>
<li>Low ratios could suggest bearish sentiment or potential oversold conditions.</li>
<li>Assets with extreme ratios might present arbitrage opportunities or increased risk.</li></ul>`,
	chart.KindFDVPie: `<p>Share of fully diluted valuation among the ten largest assets that pass the filters.</p>`,
	chart.KindScatter: `<p><strong>Explanation:</strong> This scatter plot compares Short Liquidity to Long Liquidity for each asset on a logarithmic scale.</p>
<ul><li>Each point represents an asset.</li>
<li>The x-axis shows Short Liquidity, and the y-axis shows Long Liquidity.</li>
<li>Both axes use a logarithmic scale to accommodate the wide range of values.</li></ul>
<p><strong>Interpretation:</strong></p>
<ul><li>Assets closer to the diagonal line have a more balanced liquidity ratio.</li>
<li>Assets above the diagonal have more long liquidity relative to short liquidity.</li>
<li>Assets below the diagonal have more short liquidity relative to long liquidity.</li>
<li>The logarithmic scale helps visualize relationships for assets with widely different liquidity levels.</li></ul>`,
	chart.KindBox: `<p><strong>Explanation:</strong> This box plot shows the distribution of Short and Long Liquidity across all assets.</p>
<ul><li>The boxes represent the interquartile range (IQR) containing the middle 50% of the data.</li>
<li>The line inside the box is the median.</li>
<li>Whiskers extend to 1.5 times the IQR.</li>
<li>Points beyond the whiskers are potential outliers.</li></ul>
<p><strong>Interpretation:</strong></p>
<ul><li>Compare the median and spread of Short vs Long Liquidity.</li>
<li>Identify potential outliers with exceptionally high or low liquidity.</li>
<li>Assess the overall liquidity landscape and how it differs between short and long positions.</li>
<li>The logarithmic scale on the y-axis helps visualize the wide range of liquidity values.</li></ul>`,
	chart.KindCorrelation: `<p><strong>Explanation:</strong> This heatmap shows the correlation between different metrics:</p>
<ul><li>Values range from -1 (strong negative correlation) to 1 (strong positive correlation).</li>
<li>0 indicates no linear correlation.</li></ul>
<p><strong>Interpretation:</strong></p>
<ul><li>Strong positive correlations appear in dark red.</li>
<li>Strong negative correlations appear in dark blue.</li>
<li>Look for unexpected correlations or lack of correlations.</li>
<li>Consider how these relationships might affect trading strategies or risk management.</li></ul>
<p><strong>Key relationships to observe:</strong></p>
<ul><li>Short Liquidity vs Long Liquidity: Indicates overall market sentiment.</li>
<li>FDV vs Liquidity measures: Shows if higher-valued assets have more liquidity.</li>
<li>Liquidity Ratio vs other measures: Reveals how the balance of long/short liquidity relates to other factors.</li></ul>`,
}

type pageColumn struct {
	Title  string
	Href   string
	Active bool
	Desc   bool
}

type pageChart struct {
	Heading string
	Note    template.HTML
	Src     string
	Empty   bool
}

type pageData struct {
	Title      string
	Error      string
	Thresholds table.Thresholds
	Columns    []pageColumn
	Rows       table.Table
	Filtered   int
	Charts     []pageChart
	FetchedAt  string
	ExpiresAt  string
}

// handlePage 全表（可排序）加按阈值过滤后的五张图；上游失败时在页面上显示错误
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: pageTitle, Thresholds: s.svc.Defaults()}
	code := http.StatusOK

	th, err := s.thresholds(r)
	if err == nil {
		data.Thresholds = th
		var v dashboard.View
		if v, err = s.svc.View(r.Context(), th); err == nil {
			fillPage(&data, r, v)
		}
	}
	if err != nil {
		code = statusFor(err)
		data.Error = err.Error()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error().Err(err).Msg("render page failed")
	}
}

func fillPage(data *pageData, r *http.Request, v dashboard.View) {
	column, desc := sortParams(r)

	data.Rows = v.Table.Sort(column, desc)
	data.Filtered = len(v.Filtered)
	data.FetchedAt = v.FetchedAt.Format("2006-01-02 15:04:05 MST")
	data.ExpiresAt = v.ExpiresAt.Format("15:04:05 MST")

	for _, c := range table.Columns {
		active := c.Key == column
		q := thresholdQuery(v.Thresholds)
		q.Set("sort", c.Key)
		// 当前列再次点击切换方向，其他列默认降序
		nextDesc := !active || !desc
		q.Set("order", order(nextDesc))
		data.Columns = append(data.Columns, pageColumn{
			Title:  c.Title,
			Href:   "/?" + q.Encode(),
			Active: active,
			Desc:   desc,
		})
	}

	query := thresholdQuery(v.Thresholds).Encode()
	for i, kind := range chart.Kinds {
		spec, _ := v.Charts.Spec(kind)
		empty := true
		if e, ok := spec.(interface{ Empty() bool }); ok {
			empty = e.Empty()
		}
		data.Charts = append(data.Charts, pageChart{
			Heading: strconv.Itoa(i+1) + ". " + kind.Title(),
			Note:    chartNotes[kind],
			Src:     "/charts/" + kind.String() + ".svg?" + query,
			Empty:   empty,
		})
	}
}

func thresholdQuery(th table.Thresholds) url.Values {
	q := url.Values{}
	q.Set(table.ParamMinShortLiquidity, strconv.FormatFloat(th.MinShortLiquidity, 'f', -1, 64))
	q.Set(table.ParamMinLongLiquidity, strconv.FormatFloat(th.MinLongLiquidity, 'f', -1, 64))
	q.Set(table.ParamMinFDV, strconv.FormatFloat(th.MinFDV, 'f', -1, 64))
	return q
}
