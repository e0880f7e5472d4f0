package config

import (
	"fmt"
	"time"

	"capacity-planner/calendar"
	"capacity-planner/models"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Calendar      CalendarConfig      `mapstructure:"calendar"`
	Planning      PlanningConfig      `mapstructure:"planning"`
	BusinessUnits map[string][]string `mapstructure:"business_units"`
	Teams         []string            `mapstructure:"teams"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// CalendarConfig bounds the generated fiscal period universe
type CalendarConfig struct {
	// Anchor is the date (YYYY-MM-DD) whose period sits in the middle of the
	// horizon; empty means today.
	Anchor      string `mapstructure:"anchor"`
	WeeksBack   int    `mapstructure:"weeks_back"`
	WeeksAhead  int    `mapstructure:"weeks_ahead"`
	MonthsBack  int    `mapstructure:"months_back"`
	MonthsAhead int    `mapstructure:"months_ahead"`
}

// PlanningConfig holds the planning constants
type PlanningConfig struct {
	// StandardWorkMinutes is the default paid work minutes one head
	// contributes per period, used when a team has no shift minutes entered.
	StandardWorkMinutes float64 `mapstructure:"standard_work_minutes"`
	// DefaultPeriodWindow caps the projected period columns when no date
	// range filter is set.
	DefaultPeriodWindow int `mapstructure:"default_period_window"`
	// HistoryLimit bounds the undo stack; 0 means unbounded.
	HistoryLimit int `mapstructure:"history_limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics exposure configuration
type MetricsConfig struct {
	Addr    string `mapstructure:"addr"`
	PushURL string `mapstructure:"push_url"`
}

// Load reads configuration from file and environment variables. An empty
// path applies defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CAPACITY_PLANNER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Calendar defaults: roughly a year back, two years ahead
	v.SetDefault("calendar.anchor", "")
	v.SetDefault("calendar.weeks_back", 52)
	v.SetDefault("calendar.weeks_ahead", 104)
	v.SetDefault("calendar.months_back", 12)
	v.SetDefault("calendar.months_ahead", 24)

	// Planning defaults: a 40-hour week per head, 60 period columns
	v.SetDefault("planning.standard_work_minutes", 2400)
	v.SetDefault("planning.default_period_window", 60)
	v.SetDefault("planning.history_limit", 100)

	v.SetDefault("business_units", map[string][]string{
		"Walmart Fulfillment Services": {"Customer Care", "Seller Support", "Technical Support"},
	})
	v.SetDefault("teams", []string{"Voice", "Chat", "Email", "Back Office"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.push_url", "")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Calendar.WeeksBack < 0 || c.Calendar.MonthsBack < 0 {
		return fmt.Errorf("calendar horizon counts must not be negative")
	}
	if c.Calendar.WeeksAhead < 1 {
		return fmt.Errorf("calendar.weeks_ahead must be at least 1")
	}
	if c.Calendar.MonthsAhead < 1 {
		return fmt.Errorf("calendar.months_ahead must be at least 1")
	}
	if c.Calendar.Anchor != "" {
		if _, err := time.Parse("2006-01-02", c.Calendar.Anchor); err != nil {
			return fmt.Errorf("calendar.anchor must be YYYY-MM-DD: %w", err)
		}
	}

	if c.Planning.StandardWorkMinutes <= 0 {
		return fmt.Errorf("planning.standard_work_minutes must be positive")
	}
	if c.Planning.DefaultPeriodWindow < 1 {
		return fmt.Errorf("planning.default_period_window must be at least 1")
	}
	if c.Planning.HistoryLimit < 0 {
		return fmt.Errorf("planning.history_limit must not be negative")
	}

	if err := c.BusinessUnitConfig().Validate(); err != nil {
		return fmt.Errorf("invalid business unit table: %w", err)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// BusinessUnitConfig returns the static reference table the parser and
// projection pipeline validate against.
func (c *Config) BusinessUnitConfig() models.BusinessUnitConfig {
	return models.BusinessUnitConfig{Units: c.BusinessUnits, Teams: c.Teams}
}

// Horizon returns the calendar horizon for the given granularity.
func (c *Config) Horizon(g models.Granularity) calendar.Horizon {
	var anchor time.Time
	if c.Calendar.Anchor != "" {
		anchor, _ = time.Parse("2006-01-02", c.Calendar.Anchor)
	}
	if g == models.Month {
		return calendar.Horizon{Anchor: anchor, Back: c.Calendar.MonthsBack, Ahead: c.Calendar.MonthsAhead}
	}
	return calendar.Horizon{Anchor: anchor, Back: c.Calendar.WeeksBack, Ahead: c.Calendar.WeeksAhead}
}
