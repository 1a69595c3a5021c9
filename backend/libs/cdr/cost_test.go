package cdr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCeilToStep(t *testing.T) {
	tests := []struct {
		raw, step, want string
	}{
		{"0", "1000", "0"},
		{"9999", "1000", "10000"},
		{"10000", "1000", "10000"},
		{"10000.0001", "1000", "11000"},
		{"0.3", "1", "1"},
		{"2340", "900", "2700"},
	}
	for _, tt := range tests {
		got := ceilToStep(dec(tt.raw), dec(tt.step))
		requireDecimal(t, tt.want, got, tt.raw, tt.step)
		require.False(t, got.LessThan(dec(tt.raw)))
	}
}

func TestUnitsBill(t *testing.T) {
	timeUnits := unitsFor(CategoryChargingTime, DefaultEnergyStep)
	raw := dec("2340000000000") // 39 minutes in ns
	require.Equal(t, 45*time.Minute, durationOf(timeUnits.bill(raw, int64Ptr(900))))
	require.Equal(t, 39*time.Minute, durationOf(timeUnits.bill(raw, nil)))

	odd := dec("61500000000") // 61.5 s
	require.Equal(t, 62*time.Second, durationOf(timeUnits.bill(odd, nil)))

	energyUnits := unitsFor(CategoryEnergy, DefaultEnergyStep)
	requireDecimal(t, "10000", energyUnits.bill(dec("9999"), nil))
	requireDecimal(t, "10000", energyUnits.bill(dec("9999"), int64Ptr(500)))
	requireDecimal(t, "9999", energyUnits.bill(dec("9999"), int64Ptr(1)))

	fixedUnits := unitsFor(CategoryFixedFee, DefaultEnergyStep)
	requireDecimal(t, "1", fixedUnits.bill(one, int64Ptr(60)))
}

func TestWithTaxIsAdditive(t *testing.T) {
	for _, tt := range []struct{ excl, pct, incl string }{
		{"42", "15", "48.3"},
		{"4.875", "19", "5.80125"},
		{"5.1", "19", "6.069"},
		{"3", "0", "3"},
		{"10", "7.7", "10.77"},
	} {
		p := withTax(dec(tt.excl), dec(tt.pct))
		requireDecimal(t, tt.incl, p.InclTax)
		requireDecimal(t, p.ExclTax.Mul(dec(tt.pct)).Shift(-2).String(), p.InclTax.Sub(p.ExclTax))
	}
}

func TestPriceCategoryStacksTaxRates(t *testing.T) {
	cat := flat("2.00", "10", "5")
	var usage categoryUsage
	usage.add(0, dec("3600000000000")) // 1 h

	res := priceCategory(cat, usage, unitsFor(CategoryIdleTime, DefaultEnergyStep))
	requireDecimal(t, "3600000000000", res.billed)
	requireDecimal(t, "2", res.cost.ExclTax)
	requireDecimal(t, "2.3", res.cost.InclTax)
}

func TestClampTotal(t *testing.T) {
	total := Price{ExclTax: dec("5.1"), InclTax: dec("6.069")}

	clamped := clampTotal(total, nil, decPtr("0.53"))
	requireDecimal(t, "0.53", clamped.ExclTax)
	requireDecimal(t, "0.6307", clamped.InclTax)

	raised := clampTotal(total, decPtr("10"), nil)
	requireDecimal(t, "10", raised.ExclTax)
	requireDecimal(t, "11.9", raised.InclTax)

	require.Equal(t, total, clampTotal(total, decPtr("1"), decPtr("100")))

	fromZero := clampTotal(Price{}, decPtr("1.50"), nil)
	requireDecimal(t, "1.5", fromZero.ExclTax)
	requireDecimal(t, "1.5", fromZero.InclTax)
}

func TestPriceRound(t *testing.T) {
	p := Price{ExclTax: dec("4.875"), InclTax: dec("5.80125")}.Round(2)
	requireDecimal(t, "4.88", p.ExclTax)
	requireDecimal(t, "5.8", p.InclTax)

	neg := Price{ExclTax: dec("-0.125")}.Round(2)
	requireDecimal(t, "-0.13", neg.ExclTax)
}
