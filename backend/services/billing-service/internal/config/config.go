package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evcdr/backend/libs/config"
	libdb "evcdr/backend/libs/db"
	libredis "evcdr/backend/libs/redis"
)

const defaultPort = "8083"

// Config defines billing service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"BILLING_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN  string            `yaml:"dsn" env:"BILLING_POSTGRES_DSN"`
		Pool libdb.PoolOptions `yaml:"pool"`
	} `yaml:"database"`
	Redis struct {
		libredis.Options `yaml:",inline"`
		TTL              int `yaml:"ttlSeconds" env:"BILLING_REDIS_TTL"`
	} `yaml:"redis"`
	JWT struct {
		Secret string `yaml:"secret" env:"BILLING_JWT_SECRET"`
	} `yaml:"jwt"`
	Pricing struct {
		PresentationPlaces  int32         `yaml:"presentationPlaces" env:"BILLING_PRESENTATION_PLACES"`
		DefaultEnergyStepWh int64         `yaml:"defaultEnergyStepWh" env:"BILLING_DEFAULT_ENERGY_STEP_WH"`
		DefaultTariffFile   string        `yaml:"defaultTariffFile" env:"BILLING_DEFAULT_TARIFF_FILE"`
		RequestTimeout      time.Duration `yaml:"requestTimeout" env:"BILLING_REQUEST_TIMEOUT"`
	} `yaml:"pricing"`
	Log struct {
		Level       string   `yaml:"level" env:"LOG_LEVEL"`
		Development bool     `yaml:"development" env:"LOG_DEVELOPMENT"`
		OutputPaths []string `yaml:"outputPaths" env:"LOG_OUTPUT_PATHS"`
	} `yaml:"log"`
}

// Default returns the configuration used before file and env overrides.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Redis.TTL = 300
	cfg.Pricing.PresentationPlaces = 2
	cfg.Pricing.DefaultEnergyStepWh = 1000
	cfg.Pricing.RequestTimeout = 10 * time.Second
	cfg.Log.Level = "info"
	return cfg
}

// Load configuration from file/env.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret required")
	}
	if c.Pricing.PresentationPlaces < 0 {
		return errors.New("config: presentation places must not be negative")
	}
	if c.Pricing.DefaultEnergyStepWh <= 0 {
		return errors.New("config: default energy step must be positive")
	}
	return nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// TariffCacheTTL returns how long resolved tariffs stay in Redis.
func (c *Config) TariffCacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 0
	}
	return time.Duration(c.Redis.TTL) * time.Second
}
