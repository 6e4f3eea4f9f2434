// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dukerupert/grocerycalc/internal/lookup"
	"github.com/dukerupert/grocerycalc/internal/money"
)

// Config holds all configuration values for the server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DBPath is the sqlite file holding the list and history.
	DBPath string

	// LogLevel is one of debug, info, warn, error. Defaults to "info".
	LogLevel string

	// LogFormat is "text" or "json". Defaults to "text".
	LogFormat string

	CurrencySymbol string

	// NumberFormat is a go-humanize pattern such as "#,###.##".
	NumberFormat string

	// Location renders dates. GROCERY_TIMEZONE takes an IANA name;
	// unset means the system zone.
	Location *time.Location

	LookupURL     string
	LookupTimeout time.Duration
}

// Load reads configuration from environment variables. It returns an error
// naming every variable that holds an invalid value.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("GROCERY_PORT", "8080"),
		DBPath:         getEnv("GROCERY_DB_PATH", "grocerycalc.db"),
		LogLevel:       strings.ToLower(getEnv("GROCERY_LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("GROCERY_LOG_FORMAT", "text")),
		CurrencySymbol: getEnv("GROCERY_CURRENCY_SYMBOL", money.DefaultSymbol),
		NumberFormat:   getEnv("GROCERY_NUMBER_FORMAT", money.DefaultPattern),
		LookupURL:      getEnv("GROCERY_LOOKUP_URL", lookup.DefaultBaseURL),
		Location:       time.Local,
	}

	var invalid []string

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "GROCERY_LOG_LEVEL")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		invalid = append(invalid, "GROCERY_LOG_FORMAT")
	}

	if tz := os.Getenv("GROCERY_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "GROCERY_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	timeout, err := time.ParseDuration(getEnv("GROCERY_LOOKUP_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		invalid = append(invalid, "GROCERY_LOOKUP_TIMEOUT")
	}
	cfg.LookupTimeout = timeout

	if _, err := money.NewFormatter(cfg.CurrencySymbol, cfg.NumberFormat, cfg.Location); err != nil {
		invalid = append(invalid, "GROCERY_NUMBER_FORMAT")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Formatter builds the money formatter described by cfg.
func (c Config) Formatter() (*money.Formatter, error) {
	return money.NewFormatter(c.CurrencySymbol, c.NumberFormat, c.Location)
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
