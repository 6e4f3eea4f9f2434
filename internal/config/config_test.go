package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/grocerycalc/internal/config"
	"github.com/dukerupert/grocerycalc/internal/lookup"
)

var allVars = []string{
	"GROCERY_PORT", "GROCERY_DB_PATH", "GROCERY_LOG_LEVEL", "GROCERY_LOG_FORMAT",
	"GROCERY_CURRENCY_SYMBOL", "GROCERY_NUMBER_FORMAT", "GROCERY_TIMEZONE",
	"GROCERY_LOOKUP_URL", "GROCERY_LOOKUP_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies every value falls back when nothing is set.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "grocerycalc.db", cfg.DBPath)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "₱", cfg.CurrencySymbol)
	require.Equal(t, "#,###.##", cfg.NumberFormat)
	require.Equal(t, time.Local, cfg.Location)
	require.Equal(t, lookup.DefaultBaseURL, cfg.LookupURL)
	require.Equal(t, 10*time.Second, cfg.LookupTimeout)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROCERY_PORT", "9090")
	t.Setenv("GROCERY_DB_PATH", "/data/grocery.db")
	t.Setenv("GROCERY_LOG_LEVEL", "DEBUG")
	t.Setenv("GROCERY_LOG_FORMAT", "json")
	t.Setenv("GROCERY_CURRENCY_SYMBOL", "€")
	t.Setenv("GROCERY_NUMBER_FORMAT", "#.###,##")
	t.Setenv("GROCERY_TIMEZONE", "Asia/Manila")
	t.Setenv("GROCERY_LOOKUP_URL", "http://localhost:9999/product")
	t.Setenv("GROCERY_LOOKUP_TIMEOUT", "3s")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "/data/grocery.db", cfg.DBPath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "Asia/Manila", cfg.Location.String())
	require.Equal(t, "http://localhost:9999/product", cfg.LookupURL)
	require.Equal(t, 3*time.Second, cfg.LookupTimeout)

	f, err := cfg.Formatter()
	require.NoError(t, err)
	require.NotNil(t, f)
}

// TestLoad_invalid verifies that every bad value is named in the error.
func TestLoad_invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROCERY_LOG_LEVEL", "loud")
	t.Setenv("GROCERY_LOG_FORMAT", "xml")
	t.Setenv("GROCERY_TIMEZONE", "Mars/Olympus")
	t.Setenv("GROCERY_LOOKUP_TIMEOUT", "soon")
	t.Setenv("GROCERY_NUMBER_FORMAT", "##")

	_, err := config.Load()

	require.Error(t, err)
	for _, name := range []string{"GROCERY_LOG_LEVEL", "GROCERY_LOG_FORMAT", "GROCERY_TIMEZONE", "GROCERY_LOOKUP_TIMEOUT", "GROCERY_NUMBER_FORMAT"} {
		require.ErrorContains(t, err, name)
	}
}
