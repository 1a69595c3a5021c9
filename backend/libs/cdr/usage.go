package cdr

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	one            = decimal.NewFromInt(1)
	nanosPerSecond = decimal.NewFromInt(int64(time.Second))
	nanosPerHour   = decimal.NewFromInt(int64(time.Hour))
	whPerKWh       = decimal.NewFromInt(1000)
)

// tierUsage is the raw usage of one tier summed over every interval it matched.
type tierUsage struct {
	tier int
	raw  decimal.Decimal
}

// categoryUsage collects the usage of one category for a whole session.
type categoryUsage struct {
	tiers      []tierUsage
	candidates int
}

func (u *categoryUsage) add(tier int, raw decimal.Decimal) {
	for i := range u.tiers {
		if u.tiers[i].tier == tier {
			u.tiers[i].raw = u.tiers[i].raw.Add(raw)
			return
		}
	}
	u.tiers = append(u.tiers, tierUsage{tier: tier, raw: raw})
}

// unmatched reports a category that had intervals to bill but no applicable tier.
func (u *categoryUsage) unmatched() bool {
	return u.candidates > 0 && len(u.tiers) == 0
}

// categoryUnits describes the base unit of a category: Wh for energy,
// nanoseconds for time and a plain count for the fixed fee.
type categoryUnits struct {
	defaultStep decimal.Decimal
	stepUnit    decimal.Decimal
	priceUnit   decimal.Decimal
	fixed       bool
}

func unitsFor(c Category, defaultEnergyStep int64) categoryUnits {
	switch c {
	case CategoryEnergy:
		return categoryUnits{defaultStep: decimal.NewFromInt(defaultEnergyStep), stepUnit: one, priceUnit: whPerKWh}
	case CategoryChargingTime, CategoryIdleTime:
		return categoryUnits{defaultStep: nanosPerSecond, stepUnit: nanosPerSecond, priceUnit: nanosPerHour}
	default:
		return categoryUnits{defaultStep: one, stepUnit: one, priceUnit: one, fixed: true}
	}
}

// bill discretizes raw usage with the tier step, always rounding up.
func (u categoryUnits) bill(raw decimal.Decimal, stepSize *int64) decimal.Decimal {
	if u.fixed {
		return raw
	}
	step := u.defaultStep
	if stepSize != nil {
		step = decimal.NewFromInt(*stepSize).Mul(u.stepUnit)
	}
	return ceilToStep(raw, step)
}

// ceilToStep rounds raw up to the next multiple of step.
func ceilToStep(raw, step decimal.Decimal) decimal.Decimal {
	if !raw.IsPositive() || !step.IsPositive() {
		return raw
	}
	q, r := raw.QuoRem(step, 0)
	if r.IsPositive() {
		q = q.Add(one)
	}
	return q.Mul(step)
}

func durationOf(nanos decimal.Decimal) time.Duration {
	return time.Duration(nanos.IntPart())
}
