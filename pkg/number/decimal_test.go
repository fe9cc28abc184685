package number

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestCeil(t *testing.T) {
	data := map[string]string{
		"0.10304":     "0.11",
		"0.100000001": "0.11",
		"0.108":       "0.11",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			_k := Decimal(k)
			c := Ceil(Decimal(k), 2)
			t.Log(k, c, _k.Round(2))
			assert.Equal(t, v, c.String(), "should be ceil")
		})
	}
}

func TestDiv(t *testing.T) {
	data := map[string]struct {
		x, y, want string
	}{
		"exact":     {"1", "4", "0.25"},
		"repeating": {"1", "3", "0.333333333333333333"},
		"truncates": {"2", "3", "0.666666666666666666"},
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			got := Div(Decimal(v.x), Decimal(v.y))
			assert.Equal(t, v.want, got.String())
		})
	}
}

func TestTruncate(t *testing.T) {
	d := Decimal("0.1234567890123456789999")
	assert.Equal(t, "0.123456789012345678", Truncate(d).String())
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, decimal.Zero.String(), NonNegative(Decimal("-3")).String())
	assert.Equal(t, "3", NonNegative(Decimal("3")).String())
}
