package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{21.6, "$21.60"},
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{-3.456, "-$3.46"},
		{0.005, "$0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount))
		})
	}
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 21.6, RoundMoney(20*1.08))
	assert.Equal(t, 0.1, RoundMoney(0.1+0.2-0.2))
}
