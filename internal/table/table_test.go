package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-liquidity-dashboard/internal/models"
)

var nan = models.Float(math.NaN())

func sampleRecords() []models.BankLiquidityRecord {
	return []models.BankLiquidityRecord{
		{TokenSymbol: "SOL", ShortLiquidity: 100, LongLiquidity: 250, FDV: 1.5e6},
		{TokenSymbol: "JUP", ShortLiquidity: 2e6, LongLiquidity: 1e6, FDV: 3e9},
		{TokenSymbol: "BONK", ShortLiquidity: 0, LongLiquidity: 500, FDV: 2e3},
		{TokenSymbol: "USDC", ShortLiquidity: nan, LongLiquidity: 10, FDV: nan},
	}
}

func TestDerive(t *testing.T) {
	tbl := Derive(sampleRecords())
	require.Len(t, tbl, 4)

	sol := tbl[0]
	assert.Equal(t, "SOL", sol.Symbol)
	assert.Equal(t, 2.5, float64(sol.LiquidityRatio))
	assert.Equal(t, "$100.00", sol.ShortLiquidityFormatted)
	assert.Equal(t, "$250.00", sol.LongLiquidityFormatted)
	assert.Equal(t, "$1.50M", sol.FDVFormatted)
	assert.Equal(t, "2.50", sol.LiquidityRatioFormatted)

	// 保持上游顺序
	assert.Equal(t, "JUP", tbl[1].Symbol)
	assert.Equal(t, "$3.00B", tbl[1].FDVFormatted)

	// Short 为 0：比值为 +Inf，展示 N/A
	assert.True(t, math.IsInf(float64(tbl[2].LiquidityRatio), 1))
	assert.Equal(t, "N/A", tbl[2].LiquidityRatioFormatted)

	assert.Equal(t, "N/A", tbl[3].ShortLiquidityFormatted)
	assert.Equal(t, "N/A", tbl[3].FDVFormatted)
}

func TestDerive_Deterministic(t *testing.T) {
	records := sampleRecords()
	first := Derive(records)
	second := Derive(records)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Symbol, second[i].Symbol)
		assert.Equal(t, first[i].ShortLiquidityFormatted, second[i].ShortLiquidityFormatted)
		assert.Equal(t, first[i].LiquidityRatioFormatted, second[i].LiquidityRatioFormatted)
	}
}

func TestDerive_Empty(t *testing.T) {
	assert.Empty(t, Derive(nil))
}

func symbols(t Table) []string {
	out := make([]string, 0, len(t))
	for _, r := range t {
		out = append(out, r.Symbol)
	}
	return out
}

func TestTable_Sort(t *testing.T) {
	tbl := Derive(sampleRecords())

	assert.Equal(t, []string{"JUP", "SOL", "BONK", "USDC"}, symbols(tbl.Sort(ColumnShortLiquidity, true)))
	assert.Equal(t, []string{"BONK", "SOL", "JUP", "USDC"}, symbols(tbl.Sort(ColumnShortLiquidity, false)))
	assert.Equal(t, []string{"BONK", "JUP", "SOL", "USDC"}, symbols(tbl.Sort(ColumnSymbol, false)))
	// +Inf 参与比较，NaN 排在末尾
	assert.Equal(t, []string{"BONK", "SOL", "JUP", "USDC"}, symbols(tbl.Sort(ColumnLiquidityRatio, true)))
	assert.Equal(t, []string{"JUP", "SOL", "BONK", "USDC"}, symbols(tbl.Sort(ColumnLiquidityRatio, false)))

	// 原表不变
	assert.Equal(t, []string{"SOL", "JUP", "BONK", "USDC"}, symbols(tbl))
	// 未知列
	assert.Equal(t, symbols(tbl), symbols(tbl.Sort("price", true)))
}

func TestTable_SortStable(t *testing.T) {
	tbl := Derive([]models.BankLiquidityRecord{
		{TokenSymbol: "A", ShortLiquidity: 1, LongLiquidity: 1, FDV: 5},
		{TokenSymbol: "B", ShortLiquidity: 1, LongLiquidity: 1, FDV: 5},
		{TokenSymbol: "C", ShortLiquidity: 1, LongLiquidity: 1, FDV: 9},
	})

	assert.Equal(t, []string{"C", "A", "B"}, symbols(tbl.Sort(ColumnFDV, true)))
	assert.Equal(t, []string{"A", "B", "C"}, symbols(tbl.Sort(ColumnFDV, false)))
}
