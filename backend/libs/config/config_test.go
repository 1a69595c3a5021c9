package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"TEST_HTTP_PORT"`
	} `yaml:"http"`
	Cache struct {
		TTL     time.Duration `yaml:"ttl"`
		Enabled bool          `yaml:"enabled"`
		DB      int           `yaml:"db"`
	} `yaml:"cache"`
	Ratio  float64 `yaml:"ratio"`
	Secret string  `yaml:"secret" env:"-"`
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "http:\n  port: \"8080\"\ncache:\n  ttl: 5m\n  db: 2\nratio: 0.5\nsecret: from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("TEST_HTTP_PORT", "9090")
	t.Setenv("CACHE_TTL", "90")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("SECRET", "ignored")

	var cfg testConfig
	require.NoError(t, LoadConfigFrom(path, &cfg))

	require.Equal(t, "9090", cfg.HTTP.Port)
	require.Equal(t, 90*time.Second, cfg.Cache.TTL)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, 2, cfg.Cache.DB)
	require.Equal(t, 0.5, cfg.Ratio)
	require.Equal(t, "from-file", cfg.Secret)
}

func TestLoadConfigUsesConfigFileEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: 1h30m\n"), 0o600))
	t.Setenv(defaultConfigPathEnv, path)

	var cfg testConfig
	require.NoError(t, LoadConfig(&cfg))
	require.Equal(t, 90*time.Minute, cfg.Cache.TTL)
}

func TestLoadConfigErrors(t *testing.T) {
	require.Error(t, LoadConfigFrom("", nil))

	var notStruct int
	require.Error(t, LoadConfigFrom("", &notStruct))

	require.Error(t, LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"), &testConfig{}))

	t.Setenv("CACHE_DB", "two")
	require.Error(t, LoadConfigFrom("", &testConfig{}))
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("15m")
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, d)

	d, err = parseDuration("30")
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, d)

	_, err = parseDuration("soon")
	require.Error(t, err)
}

func TestLoadConfigSlices(t *testing.T) {
	var cfg struct {
		Paths  []string        `yaml:"paths" env:"TEST_PATHS"`
		Ports  []int           `yaml:"ports" env:"TEST_PORTS"`
		Delays []time.Duration `yaml:"delays" env:"TEST_DELAYS"`
	}
	t.Setenv("TEST_PATHS", "stdout, /var/log/app.log,,")
	t.Setenv("TEST_PORTS", "80,443")
	t.Setenv("TEST_DELAYS", "1s,2")

	require.NoError(t, LoadConfigFrom("", &cfg))
	require.Equal(t, []string{"stdout", "/var/log/app.log"}, cfg.Paths)
	require.Equal(t, []int{80, 443}, cfg.Ports)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, cfg.Delays)

	t.Setenv("TEST_PORTS", "80,http")
	require.Error(t, LoadConfigFrom("", &cfg))
}

func TestLoadConfigUnsupportedType(t *testing.T) {
	var cfg struct {
		Limits map[string]int `env:"TEST_LIMITS"`
	}
	t.Setenv("TEST_LIMITS", "a=1")
	require.ErrorIs(t, LoadConfigFrom("", &cfg), errUnsupported)
}
