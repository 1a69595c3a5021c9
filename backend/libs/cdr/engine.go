package cdr

import (
	"fmt"
	"strings"
	"time"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultEnergyStep is the energy billing grain, in Wh, used when a tier declares no step.
const DefaultEnergyStep int64 = 1000

// PricingContext identifies the priced session and selects the billable
// energy register from the metering stream.
type PricingContext struct {
	ProviderID string          `json:"providerId,omitempty"`
	OperatorID string          `json:"operatorId,omitempty"`
	EVSEID     string          `json:"evseId,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	Measurand  types.Measurand `json:"measurand,omitempty"`
	Location   types.Location  `json:"location,omitempty"`
}

func (pc PricingContext) measurand() types.Measurand {
	if pc.Measurand == "" {
		return types.MeasurandEnergyActiveImportRegister
	}
	return pc.Measurand
}

func (pc PricingContext) location() types.Location {
	if pc.Location == "" {
		return types.LocationOutlet
	}
	return pc.Location
}

// Input is everything one CDR computation needs. TariffVerified must be set
// by the caller once the tariff signature has been checked.
type Input struct {
	Samples        []MeterSample
	Events         []ChargingStateEvent
	Tariff         Tariff
	TariffVerified bool
	Context        PricingContext
}

// Engine computes charge detail records. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	logger            *zap.Logger
	defaultEnergyStep int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for informational diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefaultEnergyStep overrides the energy step, in Wh, applied to tiers without one.
func WithDefaultEnergyStep(wh int64) Option {
	return func(e *Engine) {
		if wh > 0 {
			e.defaultEnergyStep = wh
		}
	}
}

// New constructs an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:            zap.NewNop(),
		defaultEnergyStep: DefaultEnergyStep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Compute prices a session with the default engine.
func Compute(in Input) (Record, error) {
	return defaultEngine.Compute(in)
}

// Compute prices one charging session. It returns either a complete record
// or an error matching one of the package sentinel errors.
func (e *Engine) Compute(in Input) (Record, error) {
	if !in.TariffVerified {
		return Record{}, fmt.Errorf("%w: tariff %q", ErrTariffNotVerified, in.Tariff.ID)
	}
	if err := in.Tariff.Validate(); err != nil {
		return Record{}, err
	}
	if cur := strings.TrimSpace(in.Context.Currency); cur != "" && !strings.EqualFold(cur, in.Tariff.Currency) {
		return Record{}, fmt.Errorf("%w: context %s, tariff %s", ErrCurrencyMismatch, cur, in.Tariff.Currency)
	}
	loc, err := in.Tariff.location()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidTariff, err)
	}

	series, err := selectEnergySeries(in.Samples, in.Context)
	if err != nil {
		return Record{}, err
	}
	intervals := segment(series.start(), series.end(), in.Events)

	usages, periods := e.collect(&in.Tariff, series, intervals, loc)
	return e.build(&in.Tariff, series, intervals, usages, periods), nil
}

// appliesTo reports whether a category bills intervals of the given kind.
func appliesTo(c Category, kind IntervalKind) bool {
	switch c {
	case CategoryChargingTime:
		return kind == IntervalCharging
	case CategoryIdleTime:
		return kind == IntervalIdle
	}
	return true
}

// collect walks the intervals in order, matching tiers against the running
// totals at each interval start and accumulating raw usage per tier.
func (e *Engine) collect(t *Tariff, series energySeries, intervals []interval, loc *time.Location) ([]categoryUsage, []ChargingPeriod) {
	usages := make([]categoryUsage, len(categories))
	periods := make([]ChargingPeriod, 0, len(intervals))
	fixedApplied := false

	var totals usageTotals
	for _, iv := range intervals {
		mc := matchContext{at: iv.start.In(loc), totals: totals}
		energy := series.at(iv.end).Sub(series.at(iv.start))
		period := ChargingPeriod{Start: iv.start, End: iv.end, Kind: iv.kind, Energy: energy}

		for ci, c := range categories {
			cat := t.Category(c)
			if cat == nil || !appliesTo(c, iv.kind) || (c == CategoryFixedFee && fixedApplied) {
				continue
			}
			usages[ci].candidates++
			tier, ok := matchTier(cat, mc)
			if !ok {
				continue
			}
			period.Tiers = append(period.Tiers, TierRef{Category: c, Tier: tier})
			switch c {
			case CategoryFixedFee:
				usages[ci].add(tier, one)
				fixedApplied = true
			case CategoryEnergy:
				usages[ci].add(tier, energy)
			default:
				usages[ci].add(tier, decimal.NewFromInt(int64(iv.duration())))
			}
		}

		totals.energy = totals.energy.Add(energy)
		if iv.kind == IntervalIdle {
			totals.idle += iv.duration()
		}
		periods = append(periods, period)
	}
	return usages, periods
}

func (e *Engine) build(t *Tariff, series energySeries, intervals []interval, usages []categoryUsage, periods []ChargingPeriod) Record {
	rec := Record{
		TariffID:    t.ID,
		Currency:    t.Currency,
		StartTime:   series.start(),
		EndTime:     series.end(),
		TotalTime:   series.end().Sub(series.start()),
		TotalEnergy: series.total(),
		Periods:     periods,
	}
	for _, iv := range intervals {
		if iv.kind == IntervalCharging {
			rec.TotalChargingTime += iv.duration()
		} else {
			rec.TotalIdleTime += iv.duration()
		}
	}

	for ci, c := range categories {
		cat := t.Category(c)
		if cat == nil {
			continue
		}
		if usages[ci].unmatched() {
			rec.Unmatched = append(rec.Unmatched, c)
			e.logger.Info("no applicable tariff component",
				zap.String("tariff_id", t.ID),
				zap.String("category", string(c)),
			)
		}

		res := priceCategory(cat, usages[ci], unitsFor(c, e.defaultEnergyStep))
		switch c {
		case CategoryFixedFee:
			rec.FixedCost = res.cost
		case CategoryEnergy:
			rec.BilledEnergy = res.billed
			rec.EnergyCost = res.cost
		case CategoryChargingTime:
			rec.BilledChargingTime = durationOf(res.billed)
			rec.ChargingTimeCost = res.cost
		case CategoryIdleTime:
			rec.BilledIdleTime = durationOf(res.billed)
			rec.IdleTimeCost = res.cost
		}
		rec.TotalCost = rec.TotalCost.Add(res.cost)
	}

	rec.BilledTime = rec.BilledChargingTime + rec.BilledIdleTime
	rec.TotalCost = clampTotal(rec.TotalCost, t.MinPrice, t.MaxPrice)
	return rec
}
