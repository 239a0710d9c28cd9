package table

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
)

func TestFilter_ZeroThresholds(t *testing.T) {
	records := []models.BankLiquidityRecord{
		{TokenSymbol: "SOL", ShortLiquidity: 100, LongLiquidity: 250, FDV: 1.5e6},
		{TokenSymbol: "JUP", ShortLiquidity: 0, LongLiquidity: 0, FDV: 0},
	}
	tbl := Derive(records)

	assert.Equal(t, symbols(tbl), symbols(Filter(tbl, Thresholds{})))
}

func TestFilter_Thresholds(t *testing.T) {
	tbl := Derive(sampleRecords())
	th := Thresholds{MinShortLiquidity: 50, MinLongLiquidity: 200, MinFDV: 1e6}

	out := Filter(tbl, th)
	assert.Equal(t, []string{"SOL", "JUP"}, symbols(out))

	for _, r := range out {
		assert.GreaterOrEqual(t, float64(r.ShortLiquidity), th.MinShortLiquidity)
		assert.GreaterOrEqual(t, float64(r.LongLiquidity), th.MinLongLiquidity)
		assert.GreaterOrEqual(t, float64(r.FDV), th.MinFDV)
	}

	// 边界值包含
	out = Filter(tbl, Thresholds{MinShortLiquidity: 100, MinLongLiquidity: 250, MinFDV: 1.5e6})
	assert.Equal(t, []string{"SOL", "JUP"}, symbols(out))
}

func TestFilter_NaNNeverPasses(t *testing.T) {
	tbl := Derive(sampleRecords())

	out := Filter(tbl, Thresholds{})
	assert.NotContains(t, symbols(out), "USDC")
	assert.Len(t, out, 3)
}

func TestFilter_DoesNotMutate(t *testing.T) {
	tbl := Derive(sampleRecords())
	_ = Filter(tbl, Thresholds{MinFDV: 1e9})

	assert.Len(t, tbl, 4)
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, Thresholds{}.Validate())
	assert.NoError(t, Thresholds{MinShortLiquidity: 1000, MinLongLiquidity: 1000, MinFDV: 1e6}.Validate())
	assert.ErrorIs(t, Thresholds{MinShortLiquidity: -1}.Validate(), ErrInvalidThreshold)
	assert.ErrorIs(t, Thresholds{MinFDV: math.NaN()}.Validate(), ErrInvalidThreshold)
	assert.ErrorIs(t, Thresholds{MinLongLiquidity: math.Inf(1)}.Validate(), ErrInvalidThreshold)
}

func TestParseThresholds(t *testing.T) {
	defaults := Thresholds{MinFDV: 500}

	th, err := ParseThresholds(url.Values{}, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, th)

	th, err = ParseThresholds(url.Values{
		ParamMinShortLiquidity: {"1000"},
		ParamMinLongLiquidity:  {" 2500.5 "},
	}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Thresholds{MinShortLiquidity: 1000, MinLongLiquidity: 2500.5, MinFDV: 500}, th)

	_, err = ParseThresholds(url.Values{ParamMinFDV: {"abc"}}, defaults)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = ParseThresholds(url.Values{ParamMinLongLiquidity: {"-1"}}, defaults)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
