package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/metrics"
	"evcdr/backend/services/billing-service/internal/models"
)

const (
	sourceSession = "session"
	sourceInline  = "inline"
)

// ErrInvalidInput is returned for requests the engine never sees.
var ErrInvalidInput = errors.New("billing: invalid input")

// TariffResolver resolves tariffs by id.
type TariffResolver interface {
	Tariff(ctx context.Context, id string) (*models.ResolvedTariff, error)
}

// MeterStore loads the metering stream of stored sessions.
type MeterStore interface {
	ListSamples(ctx context.Context, sessionID int64) ([]cdr.MeterSample, error)
	ListStateEvents(ctx context.Context, sessionID int64) ([]cdr.ChargingStateEvent, error)
}

// BillingService prices charging sessions.
type BillingService struct {
	tariffs TariffResolver
	meter   MeterStore
	engine  *cdr.Engine
	places  int32
	logger  *zap.Logger
}

// NewBillingService builds service. places is the number of decimal places of returned amounts.
func NewBillingService(tariffs TariffResolver, meter MeterStore, engine *cdr.Engine, places int32, logger *zap.Logger) *BillingService {
	return &BillingService{
		tariffs: tariffs,
		meter:   meter,
		engine:  engine,
		places:  places,
		logger:  logger,
	}
}

// SessionCDRInput selects a stored session and the tariff to price it with.
// An empty TariffID uses the active tariff.
type SessionCDRInput struct {
	SessionID int64
	TariffID  string
	Context   cdr.PricingContext
}

// InlineInput carries a caller supplied metering stream. Exactly one of
// TariffID and Tariff must be set; an inline tariff arrives over an
// authenticated channel and counts as verified.
type InlineInput struct {
	Samples  []cdr.MeterSample
	Events   []cdr.ChargingStateEvent
	TariffID string
	Tariff   *cdr.Tariff
	Context  cdr.PricingContext
}

// SessionCDR prices a stored session.
func (s *BillingService) SessionCDR(ctx context.Context, input SessionCDRInput) (*models.CDR, error) {
	if input.SessionID <= 0 {
		return nil, fmt.Errorf("%w: session id required", ErrInvalidInput)
	}

	tariff, err := s.tariffs.Tariff(ctx, input.TariffID)
	if err != nil {
		return nil, err
	}
	samples, err := s.meter.ListSamples(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	events, err := s.meter.ListStateEvents(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	return s.compute(sourceSession, input.SessionID, cdr.Input{
		Samples:        samples,
		Events:         events,
		Tariff:         tariff.Tariff,
		TariffVerified: tariff.Verified,
		Context:        input.Context,
	})
}

// PriceInline prices a caller supplied metering stream.
func (s *BillingService) PriceInline(ctx context.Context, input InlineInput) (*models.CDR, error) {
	hasID := strings.TrimSpace(input.TariffID) != ""
	if hasID == (input.Tariff != nil) {
		return nil, fmt.Errorf("%w: exactly one of tariff id and tariff required", ErrInvalidInput)
	}

	resolved := models.ResolvedTariff{Verified: true, Source: models.TariffSourceInline}
	if hasID {
		found, err := s.tariffs.Tariff(ctx, input.TariffID)
		if err != nil {
			return nil, err
		}
		resolved = *found
	} else {
		resolved.Tariff = *input.Tariff
	}

	return s.compute(sourceInline, 0, cdr.Input{
		Samples:        input.Samples,
		Events:         input.Events,
		Tariff:         resolved.Tariff,
		TariffVerified: resolved.Verified,
		Context:        input.Context,
	})
}

func (s *BillingService) compute(source string, sessionID int64, in cdr.Input) (*models.CDR, error) {
	started := time.Now()
	rec, err := s.engine.Compute(in)
	if err != nil {
		kind := cdr.ErrorKind(err)
		if kind == "" {
			kind = "internal"
		}
		metrics.ObserveCDR(source, kind, time.Since(started))
		s.logger.Info("cdr computation rejected",
			zap.String("source", source),
			zap.Int64("session_id", sessionID),
			zap.String("tariff_id", in.Tariff.ID),
			zap.String("kind", kind),
		)
		return nil, err
	}
	metrics.ObserveCDR(source, metrics.ResultSuccess, time.Since(started))
	for _, c := range rec.Unmatched {
		metrics.IncUnmatched(string(c))
	}
	metrics.AddBilledEnergy(rec.BilledEnergy.InexactFloat64())

	out := models.NewCDR(sessionID, rec.Rounded(s.places))
	s.logger.Info("cdr computed",
		zap.String("source", source),
		zap.Int64("session_id", sessionID),
		zap.String("tariff_id", rec.TariffID),
		zap.String("total_incl_tax", out.TotalCost.InclTax.String()),
	)
	return &out, nil
}
