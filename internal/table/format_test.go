package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1_500_000, "$1.50M"},
		{999, "$999.00"},
		{math.NaN(), "N/A"},
		{math.Inf(1), "N/A"},
		{0, "$0.00"},
		{1000, "$1.00K"},
		{999_999, "$1000.00K"},
		{2_340_000_000, "$2.34B"},
		{1e6, "$1.00M"},
		{-5, "$-5.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLargeNumber(tt.in), "input %v", tt.in)
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "2.50", FormatRatio(2.5))
	assert.Equal(t, "0.33", FormatRatio(1.0/3))
	assert.Equal(t, "N/A", FormatRatio(math.Inf(1)))
	assert.Equal(t, "N/A", FormatRatio(math.NaN()))
}
