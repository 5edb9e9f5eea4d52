package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "DISRUPTION_MONITOR_CONFIG"
	sourceURLEnv  = "DISRUPTION_SOURCE_URL"
	serverAddrEnv = "DISRUPTION_SERVER_ADDR"
	logLevelEnv   = "DISRUPTION_LOG_LEVEL"

	// DefaultDaysToKeepSolved is the hard default retention horizon.
	DefaultDaysToKeepSolved = 7
	// DefaultUpdateIntervalMinutes is the hard default refresh cadence.
	DefaultUpdateIntervalMinutes = 120

	defaultSourceURL  = "https://ennatuurlijk.nl/storingen"
	defaultServerAddr = ":8080"
)

var postalCodePattern = regexp.MustCompile(`^\d{4}[A-Z]{2}$`)

// Config holds all service settings.
type Config struct {
	Logging   LoggingConfig    `yaml:"logging"`
	Server    ServerConfig     `yaml:"server"`
	Source    SourceConfig     `yaml:"source"`
	Defaults  SharedDefaults   `yaml:"defaults"`
	Locations []LocationConfig `yaml:"locations"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SourceConfig points at the disruptions listing page.
type SourceConfig struct {
	URL string `yaml:"url"`
}

// SharedDefaults are deployment-wide settings every location falls back to
// when it carries no override of its own.
type SharedDefaults struct {
	DaysToKeepSolved      *int `yaml:"daysToKeepSolved"`
	UpdateIntervalMinutes *int `yaml:"updateIntervalMinutes"`
}

// LocationConfig describes one monitored town / postal code, with optional
// per-location overrides.
type LocationConfig struct {
	Town                  string `yaml:"town"`
	PostalCode            string `yaml:"postalCode"`
	DaysToKeepSolved      *int   `yaml:"daysToKeepSolved"`
	UpdateIntervalMinutes *int   `yaml:"updateIntervalMinutes"`
}

// Load reads YAML configuration (if present), applies environment
// overrides, and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(sourceURLEnv); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// Validate normalizes postal codes and rejects malformed settings.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if len(c.Locations) == 0 {
		return fmt.Errorf("at least one location is required")
	}

	for i := range c.Locations {
		loc := &c.Locations[i]
		if loc.Town == "" {
			return fmt.Errorf("location %d: town is required", i)
		}
		normalized := NormalizePostalCode(loc.PostalCode)
		if !ValidPostalCode(normalized) {
			return fmt.Errorf("location %d: invalid postal code %q (want 1234AB)", i, loc.PostalCode)
		}
		loc.PostalCode = normalized

		if loc.DaysToKeepSolved != nil && *loc.DaysToKeepSolved < 0 {
			return fmt.Errorf("location %d: daysToKeepSolved must not be negative", i)
		}
		if loc.UpdateIntervalMinutes != nil && *loc.UpdateIntervalMinutes < 1 {
			return fmt.Errorf("location %d: updateIntervalMinutes must be at least 1", i)
		}
	}
	return nil
}

// NormalizePostalCode strips spaces and uppercases a Dutch postal code.
func NormalizePostalCode(postalCode string) string {
	return strings.ToUpper(strings.ReplaceAll(postalCode, " ", ""))
}

// ValidPostalCode reports whether a normalized code matches 1234AB.
func ValidPostalCode(postalCode string) bool {
	return postalCodePattern.MatchString(postalCode)
}

// ResolveDaysToKeepSolved applies the two-level cascade: per-location
// override, then the shared default, then the hard default.
func ResolveDaysToKeepSolved(override, shared *int) int {
	if override != nil {
		return *override
	}
	if shared != nil {
		return *shared
	}
	return DefaultDaysToKeepSolved
}

// ResolveUpdateInterval applies the same cascade for the refresh cadence.
func ResolveUpdateInterval(override, shared *int) time.Duration {
	minutes := DefaultUpdateIntervalMinutes
	switch {
	case override != nil:
		minutes = *override
	case shared != nil:
		minutes = *shared
	}
	return time.Duration(minutes) * time.Minute
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: defaultServerAddr},
		Source:  SourceConfig{URL: defaultSourceURL},
	}
}
