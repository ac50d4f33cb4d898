package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(900000), ToMinorUnits(decimal.NewFromInt(9000)))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1000), ToMinorUnits(decimal.RequireFromString("9.995")))
	assert.True(t, decimal.RequireFromString("19.99").Equal(FromMinorUnits(1999)))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "1000.00", FormatAmount(Percent(decimal.NewFromInt(10000), decimal.NewFromInt(10))))
	assert.Equal(t, "0.33", FormatAmount(Percent(decimal.RequireFromString("3.33"), decimal.NewFromInt(10))))
	assert.Equal(t, "12.50", FormatAmount(Percent(decimal.NewFromInt(50), decimal.NewFromInt(25))))
}

func TestHasMinorPrecision(t *testing.T) {
	for raw, want := range map[string]bool{
		"9000":    true,
		"9000.5":  true,
		"9000.50": true,
		"0.01":    true,
		"0.004":   false,
		"10.005":  false,
	} {
		assert.Equal(t, want, HasMinorPrecision(decimal.RequireFromString(raw)), raw)
	}
}
