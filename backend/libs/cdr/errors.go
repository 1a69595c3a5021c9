package cdr

import "errors"

var (
	// ErrInsufficientData is returned when the billable metering stream has fewer than two
	// samples, is not ordered by time or cannot be interpreted as energy.
	ErrInsufficientData = errors.New("cdr: insufficient metering data")
	// ErrNegativeEnergyDelta is returned when a cumulative energy reading goes backwards.
	ErrNegativeEnergyDelta = errors.New("cdr: negative energy delta")
	// ErrCurrencyMismatch is returned when the caller currency differs from the tariff currency.
	ErrCurrencyMismatch = errors.New("cdr: currency mismatch")
	// ErrTariffNotVerified is returned when the caller has not established tariff authenticity.
	ErrTariffNotVerified = errors.New("cdr: tariff authenticity not established")
	// ErrInvalidTariff is returned when the tariff fails structural validation.
	ErrInvalidTariff = errors.New("cdr: invalid tariff")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInsufficientData, "InsufficientData"},
	{ErrNegativeEnergyDelta, "NegativeEnergyDelta"},
	{ErrCurrencyMismatch, "CurrencyMismatch"},
	{ErrTariffNotVerified, "TariffNotVerified"},
	{ErrInvalidTariff, "InvalidTariff"},
}

// ErrorKind returns the stable kind name of an engine error, or "" for foreign errors.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
