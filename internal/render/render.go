package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	chart "github.com/wcharczuk/go-chart/v2"

	dchart "github.com/utrading/utrading-liquidity-dashboard/internal/chart"
	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

var (
	ErrNoData            = errors.New("chart has no data")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Format 输出格式
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Options 画布尺寸与并发度
type Options struct {
	Width    int
	Height   int
	PoolSize int
}

// Renderer 把图表定义画成 SVG / PNG
type Renderer struct {
	width  int
	height int
	pool   *ants.Pool
}

// New 创建渲染器，pool 创建失败时 RenderAll 退化为同步执行
func New(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = len(dchart.Kinds)
	}

	pool, err := ants.NewPool(opts.PoolSize)
	if err != nil {
		logger.Warn().Err(err).Msg("create render pool failed, rendering synchronously")
	}

	return &Renderer{
		width:  opts.Width,
		height: opts.Height,
		pool:   pool,
	}
}

// Release 释放协程池
func (r *Renderer) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Render 渲染单张图，空图返回 ErrNoData
func (r *Renderer) Render(set dchart.Set, kind dchart.Kind, format Format) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if !errors.Is(err, ErrNoData) {
			monitor.ObserveRender(kind.String(), start, err)
		}
	}()

	if format != FormatSVG && format != FormatPNG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	spec, err := set.Spec(kind)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch s := spec.(type) {
	case dchart.BarChart:
		err = r.bar(s, format, &buf)
	case dchart.PieChart:
		err = r.pie(s, format, &buf)
	case dchart.ScatterChart:
		err = r.scatter(s, format, &buf)
	case dchart.BoxChart:
		err = r.box(s, format, &buf)
	case dchart.Heatmap:
		err = r.heatmap(s, format, &buf)
	default:
		err = fmt.Errorf("%w: %T", dchart.ErrUnknownKind, spec)
	}
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

// Result 一张图的渲染结果
type Result struct {
	Kind dchart.Kind
	Data []byte
	Err  error
}

// RenderAll 并发渲染五张图，结果按 dchart.Kinds 顺序返回
func (r *Renderer) RenderAll(ctx context.Context, set dchart.Set, format Format) ([]Result, error) {
	results := make([]Result, len(dchart.Kinds))
	var wg sync.WaitGroup

	for i, kind := range dchart.Kinds {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		task := func() {
			defer wg.Done()
			data, err := r.Render(set, kind, format)
			results[i] = Result{Kind: kind, Data: data, Err: err}
		}

		wg.Add(1)
		if r.pool == nil {
			task()
			continue
		}
		if err := r.pool.Submit(task); err != nil {
			// 降级：同步执行
			logger.Warn().Err(err).Str("kind", kind.String()).Msg("render pool full, rendering synchronously")
			task()
		}
	}

	wg.Wait()
	return results, ctx.Err()
}
