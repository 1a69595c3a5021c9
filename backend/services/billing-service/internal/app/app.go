package app

import (
	"context"
	"database/sql"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evcdr/backend/libs/cdr"
	libredis "evcdr/backend/libs/redis"
	"evcdr/backend/services/billing-service/internal/cache"
	"evcdr/backend/services/billing-service/internal/config"
	"evcdr/backend/services/billing-service/internal/db"
	httpserver "evcdr/backend/services/billing-service/internal/http"
	"evcdr/backend/services/billing-service/internal/http/handlers"
	"evcdr/backend/services/billing-service/internal/http/middleware"
	"evcdr/backend/services/billing-service/internal/metrics"
	"evcdr/backend/services/billing-service/internal/repository"
	"evcdr/backend/services/billing-service/internal/service"
)

// App wires billing service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var defaultTariff *cdr.Tariff
	if path := strings.TrimSpace(cfg.Pricing.DefaultTariffFile); path != "" {
		t, err := cdr.LoadTariffFile(path)
		if err != nil {
			return nil, err
		}
		defaultTariff = &t
		logger.Info("default tariff loaded", zap.String("tariff_id", t.ID), zap.String("path", path))
	}

	sqlDB, err := db.NewPostgres(ctx, cfg.Database.DSN, cfg.Database.Pool)
	if err != nil {
		return nil, err
	}

	a := &App{db: sqlDB, logger: logger}

	var tariffCache service.TariffCache
	if cfg.Redis.Enabled() {
		a.redisClient, err = libredis.NewRedisClient(ctx, cfg.Redis.Options)
		if err != nil {
			a.Close()
			return nil, err
		}
		tariffCache = cache.NewTariffStore(a.redisClient, cfg.TariffCacheTTL())
	} else {
		logger.Warn("redis addr not configured, tariff cache disabled")
	}

	metrics.Init(sqlDB)

	tariffRepo := repository.NewTariffRepository(sqlDB)
	meterRepo := repository.NewMeterRepository(sqlDB)
	tariffService := service.NewTariffService(tariffRepo, tariffCache, defaultTariff, logger)

	engine := cdr.New(
		cdr.WithLogger(logger.Named("cdr")),
		cdr.WithDefaultEnergyStep(cfg.Pricing.DefaultEnergyStepWh),
	)
	billingService := service.NewBillingService(tariffService, meterRepo, engine, cfg.Pricing.PresentationPlaces, logger)

	cdrHandler := handlers.NewCDRHandler(billingService, cfg.Pricing.RequestTimeout, logger)

	routes := httpserver.Routes{
		SessionCDR: cdrHandler.SessionCDR,
		InlineCDR:  cdrHandler.InlineCDR,
		Invoice:    cdrHandler.Invoice,
		Health:     handlers.NewHealthHandler(),
		Metrics:    promhttp.Handler(),
		Auth:       middleware.AuthMiddleware(cfg.JWT.Secret),
	}

	router := httpserver.NewRouter(routes)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, cfg.Pricing.RequestTimeout, logger)
	return a, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
