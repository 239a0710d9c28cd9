package models

import (
	"math"
	"strconv"
)

// BankLiquidityRecord 借贷市场单个 bank 的流动性快照
//
//	tokenSymbol                       -> TokenSymbol
//	tvl                               -> ShortLiquidity
//	spotMarketData.formattedLiquidity -> LongLiquidity
//	spotMarketData.formattedMC        -> FDV
type BankLiquidityRecord struct {
	TokenSymbol    string `json:"tokenSymbol"`
	ShortLiquidity Float  `json:"tvl"`
	LongLiquidity  Float  `json:"formattedLiquidity"`
	FDV            Float  `json:"formattedMC"`
}

// LiquidityRatio Long / Short，Short 为 0 时按 IEEE 语义得到 +Inf 或 NaN
func (r BankLiquidityRecord) LiquidityRatio() float64 {
	return float64(r.LongLiquidity) / float64(r.ShortLiquidity)
}

// Float 可为 NaN/Inf 的数值，JSON 中编码为 null
type Float float64

func (f Float) IsFinite() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.IsFinite() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*f = Float(math.NaN())
		return nil
	}
	if n := len(s); n >= 2 && s[0] == '"' && s[n-1] == '"' {
		s = s[1 : n-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = Float(math.NaN())
		return nil
	}
	*f = Float(v)
	return nil
}
