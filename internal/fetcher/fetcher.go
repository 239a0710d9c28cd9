package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrInvalidJSON      = errors.New("upstream body is not valid json")
	ErrNotArray         = errors.New("upstream body is not a json array")
)

// 上游字段路径
const (
	pathTokenSymbol    = "tokenSymbol"
	pathShortLiquidity = "tvl"
	pathLongLiquidity  = "spotMarketData.formattedLiquidity"
	pathFDV            = "spotMarketData.formattedMC"
)

// Fetcher 拉取一次上游快照
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]models.BankLiquidityRecord, error)
}

// HTTPFetcher 单次 GET，不重试
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher timeout <= 0 时不设置超时
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// NewHTTPFetcherWithClient 使用自定义 client（测试用）
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (records []models.BankLiquidityRecord, err error) {
	start := time.Now()
	defer func() {
		monitor.ObserveFetch(start, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	records, err = Parse(body)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("url", url).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot fetched")

	return records, nil
}

// Parse 解析上游 JSON 数组
func Parse(body []byte) ([]models.BankLiquidityRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: got %s", ErrNotArray, root.Type)
	}

	items := root.Array()
	records := make([]models.BankLiquidityRecord, 0, len(items))
	for _, item := range items {
		records = append(records, models.BankLiquidityRecord{
			TokenSymbol:    item.Get(pathTokenSymbol).String(),
			ShortLiquidity: toFloat(item.Get(pathShortLiquidity)),
			LongLiquidity:  toFloat(item.Get(pathLongLiquidity)),
			FDV:            toFloat(item.Get(pathFDV)),
		})
	}
	return records, nil
}

// toFloat 数字或数字字符串，缺失 / null / 非数字为 NaN
func toFloat(r gjson.Result) models.Float {
	switch r.Type {
	case gjson.Number:
		return models.Float(r.Float())
	case gjson.String:
		v, err := cast.ToFloat64E(strings.TrimSpace(r.Str))
		if err != nil {
			return models.Float(math.NaN())
		}
		return models.Float(v)
	default:
		return models.Float(math.NaN())
	}
}
