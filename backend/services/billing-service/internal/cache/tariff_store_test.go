package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/models"
)

type fakeClient struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestTariffStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewTariffStore(client, time.Minute)

	_, err := store.Get(ctx, "t-1")
	require.ErrorIs(t, err, ErrMiss)

	tariff := models.ResolvedTariff{
		Tariff: cdr.Tariff{
			ID:       "t-1",
			Currency: "EUR",
			Energy: &cdr.PriceCategory{Tiers: []cdr.PriceTier{{
				Price:      decimal.RequireFromString("0.45"),
				Conditions: &cdr.TariffConditions{StartTime: cdr.NewTimeOfDay(8, 0), DaysOfWeek: []cdr.DayOfWeek{cdr.Monday}},
			}}},
		},
		Verified: true,
		Source:   models.TariffSourceDatabase,
	}
	require.NoError(t, store.Save(ctx, tariff))
	require.Equal(t, time.Minute, client.ttls["billing:tariff:t-1"])

	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	require.True(t, got.Verified)
	require.Equal(t, models.TariffSourceCache, got.Source)
	require.Equal(t, "EUR", got.Tariff.Currency)
	require.Equal(t, cdr.TimeOfDay{Hour: 8}, *got.Tariff.Energy.Tiers[0].Conditions.StartTime)
	require.Equal(t, []cdr.DayOfWeek{cdr.Monday}, got.Tariff.Energy.Tiers[0].Conditions.DaysOfWeek)
	require.True(t, decimal.RequireFromString("0.45").Equal(got.Tariff.Energy.Tiers[0].Price))

	require.NoError(t, store.Delete(ctx, "t-1"))
	_, err = store.Get(ctx, "t-1")
	require.ErrorIs(t, err, ErrMiss)
}

func TestTariffStoreRejectsCorruptEntry(t *testing.T) {
	client := newFakeClient()
	client.data["billing:tariff:bad"] = "{"
	_, err := NewTariffStore(client, 0).Get(context.Background(), "bad")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMiss)
}
