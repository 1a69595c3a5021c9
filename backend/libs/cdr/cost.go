package cdr

import "github.com/shopspring/decimal"

// divisionPrecision is the number of fractional digits kept by divisions.
const divisionPrecision = 16

type categoryResult struct {
	billed decimal.Decimal
	cost   Price
}

// priceCategory turns the collected usage of a category into billed usage and cost.
func priceCategory(cat *PriceCategory, usage categoryUsage, units categoryUnits) categoryResult {
	billed, excl := decimal.Zero, decimal.Zero
	for _, tu := range usage.tiers {
		tier := cat.Tiers[tu.tier]
		b := units.bill(tu.raw, tier.StepSize)
		billed = billed.Add(b)
		excl = excl.Add(b.Mul(tier.Price).DivRound(units.priceUnit, divisionPrecision))
	}
	return categoryResult{billed: billed, cost: withTax(excl, cat.taxPercentage())}
}

// withTax applies the summed tax percentage of a category.
func withTax(excl, percentage decimal.Decimal) Price {
	tax := excl.Mul(percentage).Shift(-2)
	return Price{ExclTax: excl, InclTax: excl.Add(tax)}
}

// clampTotal bounds the tax exclusive total and rescales the tax inclusive
// figure with the blended tax rate that was actually incurred.
func clampTotal(total Price, minPrice, maxPrice *decimal.Decimal) Price {
	clamped := total.ExclTax
	if minPrice != nil && clamped.LessThan(*minPrice) {
		clamped = *minPrice
	}
	if maxPrice != nil && clamped.GreaterThan(*maxPrice) {
		clamped = *maxPrice
	}
	if clamped.Equal(total.ExclTax) {
		return total
	}
	if total.ExclTax.IsZero() {
		return Price{ExclTax: clamped, InclTax: clamped}
	}
	return Price{
		ExclTax: clamped,
		InclTax: clamped.Mul(total.InclTax).DivRound(total.ExclTax, divisionPrecision),
	}
}
