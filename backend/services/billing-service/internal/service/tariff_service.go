package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/cache"
	"evcdr/backend/services/billing-service/internal/metrics"
	"evcdr/backend/services/billing-service/internal/models"
)

// ErrTariffNotFound is returned when no source knows the requested tariff.
var ErrTariffNotFound = errors.New("tariff: not found")

// TariffStore reads stored tariff documents.
type TariffStore interface {
	Get(ctx context.Context, id string) (*models.TariffRow, error)
	GetActive(ctx context.Context) (*models.TariffRow, error)
}

// TariffCache caches resolved tariffs.
type TariffCache interface {
	Get(ctx context.Context, id string) (*models.ResolvedTariff, error)
	Save(ctx context.Context, tariff models.ResolvedTariff) error
}

// TariffService resolves tariffs from cache, database and a default file.
type TariffService struct {
	repo          TariffStore
	cache         TariffCache
	defaultTariff *models.ResolvedTariff
	logger        *zap.Logger
}

// NewTariffService returns service instance. repo, cache and defaultTariff may be nil.
func NewTariffService(repo TariffStore, cache TariffCache, defaultTariff *cdr.Tariff, logger *zap.Logger) *TariffService {
	s := &TariffService{repo: repo, cache: cache, logger: logger}
	if defaultTariff != nil {
		s.defaultTariff = &models.ResolvedTariff{
			Tariff:   *defaultTariff,
			Verified: true,
			Source:   models.TariffSourceDefault,
		}
	}
	return s
}

// Tariff returns the tariff with the given id.
func (s *TariffService) Tariff(ctx context.Context, id string) (*models.ResolvedTariff, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.ActiveTariff(ctx)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			metrics.IncTariffLookup(models.TariffSourceCache)
			return cached, nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn("tariff cache read failed", zap.String("tariff_id", id), zap.Error(err))
		}
	}

	if s.repo != nil {
		row, err := s.repo.Get(ctx, id)
		switch {
		case err == nil:
			return s.decode(ctx, row)
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}

	if s.defaultTariff != nil && s.defaultTariff.Tariff.ID == id {
		metrics.IncTariffLookup(models.TariffSourceDefault)
		return s.defaultTariff, nil
	}
	return nil, ErrTariffNotFound
}

// ActiveTariff returns currently active tariff or default fallback.
func (s *TariffService) ActiveTariff(ctx context.Context) (*models.ResolvedTariff, error) {
	if s.repo != nil {
		row, err := s.repo.GetActive(ctx)
		switch {
		case err == nil:
			return s.decode(ctx, row)
		case !errors.Is(err, sql.ErrNoRows):
			if s.defaultTariff == nil {
				return nil, err
			}
			s.logger.Warn("active tariff lookup failed, using default", zap.Error(err))
		}
	}

	if s.defaultTariff == nil {
		return nil, ErrTariffNotFound
	}
	metrics.IncTariffLookup(models.TariffSourceDefault)
	return s.defaultTariff, nil
}

func (s *TariffService) decode(ctx context.Context, row *models.TariffRow) (*models.ResolvedTariff, error) {
	tariff, err := cdr.DecodeTariff(row.Document, cdr.FormatJSON)
	if err != nil {
		return nil, err
	}
	if tariff.ID != row.ID {
		s.logger.Warn("tariff document id differs from row id",
			zap.String("row_id", row.ID),
			zap.String("document_id", tariff.ID),
		)
		tariff.ID = row.ID
	}

	resolved := &models.ResolvedTariff{Tariff: tariff, Verified: row.Verified, Source: models.TariffSourceDatabase}
	metrics.IncTariffLookup(models.TariffSourceDatabase)
	if s.cache != nil {
		if err := s.cache.Save(ctx, *resolved); err != nil {
			s.logger.Warn("tariff cache write failed", zap.String("tariff_id", row.ID), zap.Error(err))
		}
	}
	return resolved, nil
}
