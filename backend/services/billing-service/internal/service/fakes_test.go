package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/cache"
	"evcdr/backend/services/billing-service/internal/models"
)

var sessionStart = time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

type fakeTariffStore struct {
	rows    map[string]*models.TariffRow
	active  *models.TariffRow
	err     error
	lookups int
}

func (f *fakeTariffStore) Get(_ context.Context, id string) (*models.TariffRow, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeTariffStore) GetActive(context.Context) (*models.TariffRow, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	if f.active == nil {
		return nil, sql.ErrNoRows
	}
	return f.active, nil
}

type fakeTariffCache struct {
	mu      sync.Mutex
	entries map[string]models.ResolvedTariff
}

func newFakeTariffCache() *fakeTariffCache {
	return &fakeTariffCache{entries: map[string]models.ResolvedTariff{}}
}

func (f *fakeTariffCache) Get(_ context.Context, id string) (*models.ResolvedTariff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	entry.Source = models.TariffSourceCache
	return &entry, nil
}

func (f *fakeTariffCache) Save(_ context.Context, tariff models.ResolvedTariff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[tariff.Tariff.ID] = tariff
	return nil
}

type fakeMeterStore struct {
	samples map[int64][]cdr.MeterSample
	events  map[int64][]cdr.ChargingStateEvent
}

func (f *fakeMeterStore) ListSamples(_ context.Context, sessionID int64) ([]cdr.MeterSample, error) {
	return f.samples[sessionID], nil
}

func (f *fakeMeterStore) ListStateEvents(_ context.Context, sessionID int64) ([]cdr.ChargingStateEvent, error) {
	return f.events[sessionID], nil
}

func energySamples(points ...[2]int64) []cdr.MeterSample {
	samples := make([]cdr.MeterSample, 0, len(points))
	for _, p := range points {
		samples = append(samples, cdr.MeterSample{
			Timestamp: sessionStart.Add(time.Duration(p[0]) * time.Minute),
			Value:     decimal.NewFromInt(p[1]),
		})
	}
	return samples
}

func energyTariff(id, price string) cdr.Tariff {
	return cdr.Tariff{
		ID:       id,
		Currency: "EUR",
		Energy: &cdr.PriceCategory{
			Tiers:    []cdr.PriceTier{{Price: decimal.RequireFromString(price)}},
			TaxRates: []cdr.TaxRate{{Name: "VAT", Percentage: decimal.NewFromInt(19)}},
		},
	}
}

const energyTariffJSON = `{"id":"db-1","currency":"EUR","energy":{"tiers":[{"price":"0.51"}],"taxRates":[{"name":"VAT","percentage":"19"}]}}`
