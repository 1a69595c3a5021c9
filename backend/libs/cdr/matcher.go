package cdr

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// usageTotals are the cumulative quantities consumed before an interval starts.
type usageTotals struct {
	energy decimal.Decimal
	idle   time.Duration
}

// matchContext is what tier conditions are evaluated against.
type matchContext struct {
	at     time.Time
	totals usageTotals
}

// firstMatch returns the index of the first item satisfying pred.
func firstMatch[T any](items []T, pred func(T) bool) (int, bool) {
	for i, item := range items {
		if pred(item) {
			return i, true
		}
	}
	return -1, false
}

// matchTier selects the applicable tier of a category in declaration order.
func matchTier(cat *PriceCategory, mc matchContext) (int, bool) {
	if cat == nil {
		return -1, false
	}
	return firstMatch(cat.Tiers, func(t PriceTier) bool { return t.Conditions.holds(mc) })
}

func (c *TariffConditions) holds(mc matchContext) bool {
	if c == nil {
		return true
	}
	if !c.timeOfDayHolds(mc.at) {
		return false
	}
	if len(c.DaysOfWeek) > 0 && !slices.Contains(c.DaysOfWeek, DayOfWeek(mc.at.Weekday())) {
		return false
	}
	if c.MinEnergy != nil && mc.totals.energy.LessThan(*c.MinEnergy) {
		return false
	}
	if c.MaxEnergy != nil && !mc.totals.energy.LessThan(*c.MaxEnergy) {
		return false
	}
	if c.MinIdleTime != nil && mc.totals.idle < c.MinIdleTime.Duration() {
		return false
	}
	if c.MaxIdleTime != nil && mc.totals.idle >= c.MaxIdleTime.Duration() {
		return false
	}
	return true
}

// timeOfDayHolds checks [StartTime, EndTime). A window whose end is not after
// its start wraps past midnight; equal bounds cover the whole day.
func (c *TariffConditions) timeOfDayHolds(at time.Time) bool {
	sec := at.Hour()*3600 + at.Minute()*60 + at.Second()
	switch {
	case c.StartTime != nil && c.EndTime != nil:
		start, end := c.StartTime.seconds(), c.EndTime.seconds()
		if start < end {
			return sec >= start && sec < end
		}
		return sec >= start || sec < end
	case c.StartTime != nil:
		return sec >= c.StartTime.seconds()
	case c.EndTime != nil:
		return sec < c.EndTime.seconds()
	}
	return true
}
