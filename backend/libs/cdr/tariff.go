package cdr

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category names one independently priced dimension of a tariff.
type Category string

// Price categories in evaluation order.
const (
	CategoryFixedFee     Category = "FixedFee"
	CategoryEnergy       Category = "Energy"
	CategoryChargingTime Category = "ChargingTime"
	CategoryIdleTime     Category = "IdleTime"
)

var categories = []Category{CategoryFixedFee, CategoryEnergy, CategoryChargingTime, CategoryIdleTime}

// Categories returns every price category in evaluation order.
func Categories() []Category { return slices.Clone(categories) }

// Tariff is a priced, conditionally tiered charging policy.
//
// Energy prices are per kWh and time prices are per hour. A nil category is
// absent from the tariff and always bills zero.
type Tariff struct {
	ID           string           `json:"id" yaml:"id" toml:"id"`
	Currency     string           `json:"currency" yaml:"currency" toml:"currency"`
	TimeZone     string           `json:"timeZone,omitempty" yaml:"timeZone,omitempty" toml:"time_zone,omitempty"`
	FixedFee     *PriceCategory   `json:"fixedFee,omitempty" yaml:"fixedFee,omitempty" toml:"fixed_fee,omitempty"`
	Energy       *PriceCategory   `json:"energy,omitempty" yaml:"energy,omitempty" toml:"energy,omitempty"`
	ChargingTime *PriceCategory   `json:"chargingTime,omitempty" yaml:"chargingTime,omitempty" toml:"charging_time,omitempty"`
	IdleTime     *PriceCategory   `json:"idleTime,omitempty" yaml:"idleTime,omitempty" toml:"idle_time,omitempty"`
	MinPrice     *decimal.Decimal `json:"minPrice,omitempty" yaml:"minPrice,omitempty" toml:"min_price,omitempty"`
	MaxPrice     *decimal.Decimal `json:"maxPrice,omitempty" yaml:"maxPrice,omitempty" toml:"max_price,omitempty"`
}

// PriceCategory holds the ordered tiers and tax rates of one category.
type PriceCategory struct {
	Tiers    []PriceTier `json:"tiers" yaml:"tiers" toml:"tiers"`
	TaxRates []TaxRate   `json:"taxRates,omitempty" yaml:"taxRates,omitempty" toml:"tax_rates,omitempty"`
}

// PriceTier is one conditional price rule. StepSize is in Wh for energy and
// in seconds for the time categories.
type PriceTier struct {
	Price      decimal.Decimal   `json:"price" yaml:"price" toml:"price"`
	StepSize   *int64            `json:"stepSize,omitempty" yaml:"stepSize,omitempty" toml:"step_size,omitempty"`
	Conditions *TariffConditions `json:"conditions,omitempty" yaml:"conditions,omitempty" toml:"conditions,omitempty"`
}

// TaxRate is a percentage applied on top of a category cost.
type TaxRate struct {
	Name       string          `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Percentage decimal.Decimal `json:"percentage" yaml:"percentage" toml:"percentage"`
}

// TariffConditions restrict when a tier applies. Energy thresholds are Wh.
type TariffConditions struct {
	StartTime   *TimeOfDay       `json:"startTime,omitempty" yaml:"startTime,omitempty" toml:"start_time,omitempty"`
	EndTime     *TimeOfDay       `json:"endTime,omitempty" yaml:"endTime,omitempty" toml:"end_time,omitempty"`
	DaysOfWeek  []DayOfWeek      `json:"daysOfWeek,omitempty" yaml:"daysOfWeek,omitempty" toml:"days_of_week,omitempty"`
	MinEnergy   *decimal.Decimal `json:"minEnergy,omitempty" yaml:"minEnergy,omitempty" toml:"min_energy,omitempty"`
	MaxEnergy   *decimal.Decimal `json:"maxEnergy,omitempty" yaml:"maxEnergy,omitempty" toml:"max_energy,omitempty"`
	MinIdleTime *Seconds         `json:"minIdleTime,omitempty" yaml:"minIdleTime,omitempty" toml:"min_idle_time,omitempty"`
	MaxIdleTime *Seconds         `json:"maxIdleTime,omitempty" yaml:"maxIdleTime,omitempty" toml:"max_idle_time,omitempty"`
}

// Seconds is a whole number of seconds.
type Seconds int64

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration { return time.Duration(s) * time.Second }

// TimeOfDay is a wall clock time with minute resolution, written as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay returns a TimeOfDay pointer, mostly for building tariffs in code.
func NewTimeOfDay(hour, minute int) *TimeOfDay {
	return &TimeOfDay{Hour: hour, Minute: minute}
}

func (t TimeOfDay) seconds() int { return t.Hour*3600 + t.Minute*60 }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts "HH:MM", "HH:MM:SS" and RFC 3339 timestamps (TOML local times).
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		*t = TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}
		return nil
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("cdr: invalid time of day %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("cdr: invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("cdr: invalid minute in %q", raw)
	}
	*t = TimeOfDay{Hour: hour, Minute: minute}
	return nil
}

// DayOfWeek is a weekday written as "MONDAY" ... "SUNDAY".
type DayOfWeek time.Weekday

// Weekday constants for tariff conditions.
const (
	Sunday    = DayOfWeek(time.Sunday)
	Monday    = DayOfWeek(time.Monday)
	Tuesday   = DayOfWeek(time.Tuesday)
	Wednesday = DayOfWeek(time.Wednesday)
	Thursday  = DayOfWeek(time.Thursday)
	Friday    = DayOfWeek(time.Friday)
	Saturday  = DayOfWeek(time.Saturday)
)

func (d DayOfWeek) String() string { return strings.ToUpper(time.Weekday(d).String()) }

// MarshalText implements encoding.TextMarshaler.
func (d DayOfWeek) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText accepts full or three letter weekday names in any case.
func (d *DayOfWeek) UnmarshalText(text []byte) error {
	raw := strings.ToUpper(strings.TrimSpace(string(text)))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToUpper(wd.String())
		if raw == name || raw == name[:3] {
			*d = DayOfWeek(wd)
			return nil
		}
	}
	return fmt.Errorf("cdr: invalid day of week %q", string(text))
}

// Category returns the named category or nil when it is absent.
func (t *Tariff) Category(c Category) *PriceCategory {
	switch c {
	case CategoryFixedFee:
		return t.FixedFee
	case CategoryEnergy:
		return t.Energy
	case CategoryChargingTime:
		return t.ChargingTime
	case CategoryIdleTime:
		return t.IdleTime
	}
	return nil
}

func (t *Tariff) location() (*time.Location, error) {
	if strings.TrimSpace(t.TimeZone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(t.TimeZone)
}

// Validate checks the structural invariants of the tariff.
func (t *Tariff) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return invalidTariff("empty id")
	}
	if len(strings.TrimSpace(t.Currency)) != 3 {
		return invalidTariff("currency %q is not an ISO 4217 code", t.Currency)
	}
	if _, err := t.location(); err != nil {
		return invalidTariff("time zone %q: %v", t.TimeZone, err)
	}

	present := 0
	for _, c := range categories {
		cat := t.Category(c)
		if cat == nil {
			continue
		}
		present++
		if err := cat.validate(c); err != nil {
			return err
		}
	}
	if present == 0 {
		return invalidTariff("no price categories")
	}

	if t.MinPrice != nil && t.MinPrice.IsNegative() {
		return invalidTariff("negative min price")
	}
	if t.MaxPrice != nil && t.MaxPrice.IsNegative() {
		return invalidTariff("negative max price")
	}
	if t.MinPrice != nil && t.MaxPrice != nil && t.MinPrice.GreaterThan(*t.MaxPrice) {
		return invalidTariff("min price %s exceeds max price %s", t.MinPrice, t.MaxPrice)
	}
	return nil
}

func (c *PriceCategory) validate(name Category) error {
	if len(c.Tiers) == 0 {
		return invalidTariff("%s: no tiers", name)
	}
	for i, tier := range c.Tiers {
		if tier.Price.IsNegative() {
			return invalidTariff("%s tier %d: negative price", name, i)
		}
		if tier.StepSize != nil && *tier.StepSize <= 0 {
			return invalidTariff("%s tier %d: step size must be positive", name, i)
		}
		if err := tier.Conditions.validate(); err != nil {
			return invalidTariff("%s tier %d: %v", name, i, err)
		}
	}
	for _, rate := range c.TaxRates {
		if rate.Percentage.IsNegative() {
			return invalidTariff("%s: negative tax rate %q", name, rate.Name)
		}
	}
	return nil
}

func (c *TariffConditions) validate() error {
	if c == nil {
		return nil
	}
	if c.MinEnergy != nil && c.MinEnergy.IsNegative() {
		return errors.New("negative min energy")
	}
	if c.MinEnergy != nil && c.MaxEnergy != nil && c.MinEnergy.GreaterThan(*c.MaxEnergy) {
		return errors.New("min energy exceeds max energy")
	}
	if c.MinIdleTime != nil && *c.MinIdleTime < 0 {
		return errors.New("negative min idle time")
	}
	if c.MinIdleTime != nil && c.MaxIdleTime != nil && *c.MinIdleTime > *c.MaxIdleTime {
		return errors.New("min idle time exceeds max idle time")
	}
	for _, d := range c.DaysOfWeek {
		if d < Sunday || d > Saturday {
			return fmt.Errorf("invalid day of week %d", d)
		}
	}
	return nil
}

// taxPercentage is the sum of all tax rates of the category.
func (c *PriceCategory) taxPercentage() decimal.Decimal {
	total := decimal.Zero
	for _, rate := range c.TaxRates {
		total = total.Add(rate.Percentage)
	}
	return total
}

func invalidTariff(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTariff, fmt.Sprintf(format, args...))
}
