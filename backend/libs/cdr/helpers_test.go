package cdr

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC) // Monday

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func int64Ptr(v int64) *int64 { return &v }

func secondsPtr(v Seconds) *Seconds { return &v }

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

// energySamples builds Wh register samples at the given minute offsets from sessionStart.
func energySamples(points ...[2]int64) []MeterSample {
	samples := make([]MeterSample, 0, len(points))
	for _, p := range points {
		samples = append(samples, MeterSample{
			Timestamp: sessionStart.Add(time.Duration(p[0]) * time.Minute),
			Value:     decimal.NewFromInt(p[1]),
		})
	}
	return samples
}

func stateAt(minute int, state ChargingState) ChargingStateEvent {
	return ChargingStateEvent{Timestamp: sessionStart.Add(time.Duration(minute) * time.Minute), State: state}
}

func flat(price string, taxes ...string) *PriceCategory {
	cat := &PriceCategory{Tiers: []PriceTier{{Price: dec(price)}}}
	for _, pct := range taxes {
		cat.TaxRates = append(cat.TaxRates, TaxRate{Name: "VAT", Percentage: dec(pct)})
	}
	return cat
}
