package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evcdr/backend/services/billing-service/internal/models"
)

// ErrMiss is returned when a tariff is not cached.
var ErrMiss = errors.New("cache: miss")

// Client is the subset of the go-redis client used by the store.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TariffStore caches resolved tariffs by id.
type TariffStore struct {
	client Client
	ttl    time.Duration
}

// NewTariffStore returns redis-backed store.
func NewTariffStore(client Client, ttl time.Duration) *TariffStore {
	return &TariffStore{client: client, ttl: ttl}
}

func (s *TariffStore) key(tariffID string) string {
	return fmt.Sprintf("billing:tariff:%s", tariffID)
}

// Save caches a resolved tariff.
func (s *TariffStore) Save(ctx context.Context, tariff models.ResolvedTariff) error {
	data, err := json.Marshal(tariff)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(tariff.Tariff.ID), data, s.ttl).Err()
}

// Get returns a cached tariff or ErrMiss.
func (s *TariffStore) Get(ctx context.Context, tariffID string) (*models.ResolvedTariff, error) {
	result, err := s.client.Get(ctx, s.key(tariffID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var tariff models.ResolvedTariff
	if err := json.Unmarshal([]byte(result), &tariff); err != nil {
		return nil, fmt.Errorf("cache: decode tariff %s: %w", tariffID, err)
	}
	tariff.Source = models.TariffSourceCache
	return &tariff, nil
}

// Delete evicts a cached tariff.
func (s *TariffStore) Delete(ctx context.Context, tariffID string) error {
	return s.client.Del(ctx, s.key(tariffID)).Err()
}
