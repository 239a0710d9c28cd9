package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiquidityRatio(t *testing.T) {
	r := BankLiquidityRecord{TokenSymbol: "SOL", ShortLiquidity: 100, LongLiquidity: 250}
	assert.Equal(t, 2.5, r.LiquidityRatio())

	zero := BankLiquidityRecord{ShortLiquidity: 0, LongLiquidity: 10}
	assert.True(t, math.IsInf(zero.LiquidityRatio(), 1))

	empty := BankLiquidityRecord{}
	assert.True(t, math.IsNaN(empty.LiquidityRatio()))
}

func TestFloat_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Float{1.5, Float(math.NaN()), Float(math.Inf(1)), 1e9})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,null,null,1e+09]`, string(data))
}

func TestFloat_UnmarshalJSON(t *testing.T) {
	var fs []Float
	require.NoError(t, json.Unmarshal([]byte(`[2.5,"3.25",null,"abc"]`), &fs))

	require.Len(t, fs, 4)
	assert.Equal(t, Float(2.5), fs[0])
	assert.Equal(t, Float(3.25), fs[1])
	assert.True(t, math.IsNaN(float64(fs[2])))
	assert.True(t, math.IsNaN(float64(fs[3])))
}
