package fetcher

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `[
  {"tokenSymbol":"SOL","tvl":100,"spotMarketData":{"formattedLiquidity":250,"formattedMC":1500000}},
  {"tokenSymbol":"JUP","tvl":"2000.5","spotMarketData":{"formattedLiquidity":"1000","formattedMC":"abc"}},
  {"tokenSymbol":"BONK","tvl":0,"spotMarketData":{}}
]`

func newUpstream(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, sampleBody)

	records, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// 顺序与上游一致
	assert.Equal(t, "SOL", records[0].TokenSymbol)
	assert.Equal(t, 100.0, float64(records[0].ShortLiquidity))
	assert.Equal(t, 250.0, float64(records[0].LongLiquidity))
	assert.Equal(t, 1.5e6, float64(records[0].FDV))
	assert.Equal(t, 2.5, records[0].LiquidityRatio())

	// 数字字符串
	assert.Equal(t, 2000.5, float64(records[1].ShortLiquidity))
	assert.Equal(t, 1000.0, float64(records[1].LongLiquidity))
	assert.True(t, math.IsNaN(float64(records[1].FDV)))

	// 缺失字段
	assert.True(t, math.IsNaN(float64(records[2].LongLiquidity)))
	assert.True(t, math.IsNaN(float64(records[2].FDV)))
}

func TestHTTPFetcher_EmptyArray(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, `[]`)

	records, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHTTPFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrUnexpectedStatus},
		{"not found", http.StatusNotFound, `[]`, ErrUnexpectedStatus},
		{"invalid json", http.StatusOK, `[{"tokenSymbol":`, ErrInvalidJSON},
		{"object body", http.StatusOK, `{"error":"x"}`, ErrNotArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newUpstream(t, tt.status, tt.body)

			_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPFetcher_NetworkError(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestParse_NullValues(t *testing.T) {
	records, err := Parse([]byte(`[{"tokenSymbol":"USDC","tvl":null,"spotMarketData":{"formattedLiquidity":" 42 ","formattedMC":1e9}}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.True(t, math.IsNaN(float64(records[0].ShortLiquidity)))
	assert.Equal(t, 42.0, float64(records[0].LongLiquidity))
	assert.Equal(t, 1e9, float64(records[0].FDV))
}
