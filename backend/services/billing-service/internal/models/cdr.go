package models

import (
	"time"

	"github.com/shopspring/decimal"

	"evcdr/backend/libs/cdr"
)

// CDR is the API representation of a priced charge detail record. Times are
// in seconds and energies in Wh.
type CDR struct {
	SessionID int64     `json:"session_id,omitempty"`
	TariffID  string    `json:"tariff_id"`
	Currency  string    `json:"currency"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	TotalTimeSeconds          float64 `json:"total_time_s"`
	BilledTimeSeconds         float64 `json:"billed_time_s"`
	TotalChargingTimeSeconds  float64 `json:"total_charging_time_s"`
	BilledChargingTimeSeconds float64 `json:"billed_charging_time_s"`
	TotalIdleTimeSeconds      float64 `json:"total_idle_time_s"`
	BilledIdleTimeSeconds     float64 `json:"billed_idle_time_s"`

	TotalEnergyWh  decimal.Decimal `json:"total_energy_wh"`
	BilledEnergyWh decimal.Decimal `json:"billed_energy_wh"`

	FixedCost        cdr.Price `json:"fixed_cost"`
	EnergyCost       cdr.Price `json:"energy_cost"`
	ChargingTimeCost cdr.Price `json:"charging_time_cost"`
	IdleTimeCost     cdr.Price `json:"idle_time_cost"`
	TotalCost        cdr.Price `json:"total_cost"`

	Periods   []Period       `json:"periods,omitempty"`
	Unmatched []cdr.Category `json:"unmatched,omitempty"`
}

// Period is one charging or idle interval of a CDR.
type Period struct {
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	Kind     cdr.IntervalKind `json:"kind"`
	EnergyWh decimal.Decimal  `json:"energy_wh"`
	Tiers    []cdr.TierRef    `json:"tiers,omitempty"`
}

// NewCDR converts an engine record to its API form.
func NewCDR(sessionID int64, rec cdr.Record) CDR {
	out := CDR{
		SessionID:                 sessionID,
		TariffID:                  rec.TariffID,
		Currency:                  rec.Currency,
		StartTime:                 rec.StartTime.UTC(),
		EndTime:                   rec.EndTime.UTC(),
		TotalTimeSeconds:          rec.TotalTime.Seconds(),
		BilledTimeSeconds:         rec.BilledTime.Seconds(),
		TotalChargingTimeSeconds:  rec.TotalChargingTime.Seconds(),
		BilledChargingTimeSeconds: rec.BilledChargingTime.Seconds(),
		TotalIdleTimeSeconds:      rec.TotalIdleTime.Seconds(),
		BilledIdleTimeSeconds:     rec.BilledIdleTime.Seconds(),
		TotalEnergyWh:             rec.TotalEnergy,
		BilledEnergyWh:            rec.BilledEnergy,
		FixedCost:                 rec.FixedCost,
		EnergyCost:                rec.EnergyCost,
		ChargingTimeCost:          rec.ChargingTimeCost,
		IdleTimeCost:              rec.IdleTimeCost,
		TotalCost:                 rec.TotalCost,
		Unmatched:                 rec.Unmatched,
	}
	for _, p := range rec.Periods {
		out.Periods = append(out.Periods, Period{
			Start:    p.Start.UTC(),
			End:      p.End.UTC(),
			Kind:     p.Kind,
			EnergyWh: p.Energy,
			Tiers:    p.Tiers,
		})
	}
	return out
}
