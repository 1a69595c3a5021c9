package cdr

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Price is a monetary amount with and without taxes.
type Price struct {
	ExclTax decimal.Decimal `json:"excludingTaxes"`
	InclTax decimal.Decimal `json:"includingTaxes"`
}

// Add returns the sum of p and o.
func (p Price) Add(o Price) Price {
	return Price{ExclTax: p.ExclTax.Add(o.ExclTax), InclTax: p.InclTax.Add(o.InclTax)}
}

// Round rounds both amounts half away from zero.
func (p Price) Round(places int32) Price {
	return Price{ExclTax: p.ExclTax.Round(places), InclTax: p.InclTax.Round(places)}
}

// TierRef identifies the tier a category used for one period.
type TierRef struct {
	Category Category `json:"category"`
	Tier     int      `json:"tier"`
}

// ChargingPeriod is one charging or idle interval of the session with the
// energy delivered during it (Wh) and the tiers that priced it.
type ChargingPeriod struct {
	Start  time.Time       `json:"start"`
	End    time.Time       `json:"end"`
	Kind   IntervalKind    `json:"kind"`
	Energy decimal.Decimal `json:"energy"`
	Tiers  []TierRef       `json:"tiers,omitempty"`
}

// Record is the priced charge detail record of one session. Energy is in Wh.
type Record struct {
	TariffID  string    `json:"tariffId"`
	Currency  string    `json:"currency"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	TotalTime          time.Duration `json:"totalTime"`
	BilledTime         time.Duration `json:"billedTime"`
	TotalChargingTime  time.Duration `json:"totalChargingTime"`
	BilledChargingTime time.Duration `json:"billedChargingTime"`
	TotalIdleTime      time.Duration `json:"totalIdleTime"`
	BilledIdleTime     time.Duration `json:"billedIdleTime"`

	TotalEnergy  decimal.Decimal `json:"totalEnergy"`
	BilledEnergy decimal.Decimal `json:"billedEnergy"`

	FixedCost        Price `json:"fixedCost"`
	EnergyCost       Price `json:"billedEnergyCost"`
	ChargingTimeCost Price `json:"billedChargingTimeCost"`
	IdleTimeCost     Price `json:"billedIdleTimeCost"`
	TotalCost        Price `json:"totalCost"`

	Periods   []ChargingPeriod `json:"periods,omitempty"`
	Unmatched []Category       `json:"unmatched,omitempty"`
}

// Rounded returns a copy of r with monetary amounts and energies rounded half
// away from zero for presentation.
func (r Record) Rounded(places int32) Record {
	out := r
	out.TotalEnergy = r.TotalEnergy.Round(places)
	out.BilledEnergy = r.BilledEnergy.Round(places)
	out.FixedCost = r.FixedCost.Round(places)
	out.EnergyCost = r.EnergyCost.Round(places)
	out.ChargingTimeCost = r.ChargingTimeCost.Round(places)
	out.IdleTimeCost = r.IdleTimeCost.Round(places)
	out.TotalCost = r.TotalCost.Round(places)
	out.Unmatched = slices.Clone(r.Unmatched)
	if r.Periods == nil {
		return out
	}
	out.Periods = make([]ChargingPeriod, len(r.Periods))
	for i, p := range r.Periods {
		p.Energy = p.Energy.Round(places)
		p.Tiers = slices.Clone(p.Tiers)
		out.Periods[i] = p
	}
	return out
}
