package cdr

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"github.com/shopspring/decimal"
)

// MeterSample is a single sampled value of a session metering stream.
type MeterSample struct {
	Timestamp  time.Time            `json:"timestamp"`
	Value      decimal.Decimal      `json:"value"`
	Measurand  types.Measurand      `json:"measurand,omitempty"`
	Unit       types.UnitOfMeasure  `json:"unit,omitempty"`
	Multiplier int32                `json:"multiplier,omitempty"`
	Context    types.ReadingContext `json:"context,omitempty"`
	Location   types.Location       `json:"location,omitempty"`
}

func (s MeterSample) measurand() types.Measurand {
	if s.Measurand == "" {
		return types.MeasurandEnergyActiveImportRegister
	}
	return s.Measurand
}

func (s MeterSample) location() types.Location {
	if s.Location == "" {
		return types.LocationOutlet
	}
	return s.Location
}

// WattHours returns the sample value scaled by its multiplier and normalized to Wh.
func (s MeterSample) WattHours() (decimal.Decimal, error) {
	v := s.Value.Shift(s.Multiplier)
	switch s.Unit {
	case "", types.UnitOfMeasureWh:
		return v, nil
	case types.UnitOfMeasureKWh:
		return v.Shift(3), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported energy unit %q", ErrInsufficientData, s.Unit)
	}
}

// SamplesFromMeterValues flattens OCPP 1.6 MeterValues into samples. Signed and
// per-phase values are skipped.
func SamplesFromMeterValues(values []types.MeterValue) ([]MeterSample, error) {
	var samples []MeterSample
	for i, mv := range values {
		if mv.Timestamp == nil {
			return nil, fmt.Errorf("cdr: meter value %d has no timestamp", i)
		}
		for _, sv := range mv.SampledValue {
			if sv.Format == types.ValueFormatSignedData || sv.Phase != "" {
				continue
			}
			value, err := decimal.NewFromString(strings.TrimSpace(sv.Value))
			if err != nil {
				return nil, fmt.Errorf("cdr: meter value %d: parse %q: %w", i, sv.Value, err)
			}
			samples = append(samples, MeterSample{
				Timestamp: mv.Timestamp.Time,
				Value:     value,
				Measurand: sv.Measurand,
				Unit:      sv.Unit,
				Context:   sv.Context,
				Location:  sv.Location,
			})
		}
	}
	return samples, nil
}

type energyPoint struct {
	at time.Time
	wh decimal.Decimal
}

// energySeries is the billable cumulative energy register of one session, in Wh.
type energySeries []energyPoint

func selectEnergySeries(samples []MeterSample, pc PricingContext) (energySeries, error) {
	measurand := pc.measurand()
	location := pc.location()

	var series energySeries
	for _, s := range samples {
		if s.measurand() != measurand || s.location() != location {
			continue
		}
		if s.Timestamp.IsZero() {
			return nil, fmt.Errorf("%w: sample without timestamp", ErrInsufficientData)
		}
		wh, err := s.WattHours()
		if err != nil {
			return nil, err
		}
		if n := len(series); n > 0 {
			prev := series[n-1]
			if s.Timestamp.Before(prev.at) {
				return nil, fmt.Errorf("%w: samples not in chronological order", ErrInsufficientData)
			}
			if wh.LessThan(prev.wh) {
				return nil, fmt.Errorf("%w: register decreased at %s", ErrNegativeEnergyDelta, s.Timestamp.UTC().Format(time.RFC3339))
			}
		}
		series = append(series, energyPoint{at: s.Timestamp, wh: wh})
	}

	if len(series) < 2 {
		return nil, fmt.Errorf("%w: %d billable %s samples, need at least 2", ErrInsufficientData, len(series), measurand)
	}
	if !series.end().After(series.start()) {
		return nil, fmt.Errorf("%w: session has no duration", ErrInsufficientData)
	}
	return series, nil
}

func (s energySeries) start() time.Time { return s[0].at }

func (s energySeries) end() time.Time { return s[len(s)-1].at }

func (s energySeries) total() decimal.Decimal { return s[len(s)-1].wh.Sub(s[0].wh) }

// at returns the register value at t, interpolating linearly between the
// surrounding samples.
func (s energySeries) at(t time.Time) decimal.Decimal {
	if !t.After(s.start()) {
		return s[0].wh
	}
	if !t.Before(s.end()) {
		return s[len(s)-1].wh
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].at.After(t) })
	prev, next := s[i-1], s[i]
	if prev.at.Equal(t) {
		return prev.wh
	}
	elapsed := decimal.NewFromInt(int64(t.Sub(prev.at)))
	span := decimal.NewFromInt(int64(next.at.Sub(prev.at)))
	return prev.wh.Add(next.wh.Sub(prev.wh).Mul(elapsed).DivRound(span, divisionPrecision))
}

// consumed returns the energy delivered between the session start and t.
func (s energySeries) consumed(t time.Time) decimal.Decimal {
	return s.at(t).Sub(s[0].wh)
}
