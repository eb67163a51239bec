// Package config handles configuration loading for FairSight.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/fairsight/fairsight/internal/valuation"
	"github.com/fairsight/fairsight/pkg/models"
)

// Config represents the complete application configuration.
type Config struct {
	Valuation  ValuationConfig  `mapstructure:"valuation"  yaml:"valuation"`
	Datasource DatasourceConfig `mapstructure:"datasource" yaml:"datasource"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
}

// ValuationConfig holds the engine defaults. Rates are decimals
// (0.10 = 10%). A zero multiple means "no external benchmark".
type ValuationConfig struct {
	GrowthRate      float64         `mapstructure:"growth_rate"      yaml:"growth_rate"`      // FCF projection growth
	DiscountRate    float64         `mapstructure:"discount_rate"    yaml:"discount_rate"`    // WACC
	TerminalGrowth  float64         `mapstructure:"terminal_growth"  yaml:"terminal_growth"`
	ProjectionYears int             `mapstructure:"projection_years" yaml:"projection_years"`
	Parallel        bool            `mapstructure:"parallel"         yaml:"parallel"`
	Multiples       MultiplesConfig `mapstructure:"multiples"        yaml:"multiples"`
}

// MultiplesConfig holds externally supplied benchmark multiples that
// bypass peer averaging. Zero means unset.
type MultiplesConfig struct {
	PE       float64 `mapstructure:"pe"        yaml:"pe"`
	PBV      float64 `mapstructure:"pbv"       yaml:"pbv"`
	EVEBITDA float64 `mapstructure:"ev_ebitda" yaml:"ev_ebitda"`
}

// DatasourceConfig holds data fetching settings.
type DatasourceConfig struct {
	CacheTTL    int    `mapstructure:"cache_ttl"     yaml:"cache_ttl"`     // seconds
	RateLimit   int    `mapstructure:"rate_limit"    yaml:"rate_limit"`    // requests per second
	NewsFeedURL string `mapstructure:"news_feed_url" yaml:"news_feed_url"` // %s is replaced by the ticker
	NewsLimit   int    `mapstructure:"news_limit"    yaml:"news_limit"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// EngineOptions converts the config section into engine options. Zero
// multiples map to nil — the engine must never mistake "unset" for an
// actual zero benchmark.
func (c ValuationConfig) EngineOptions() valuation.Options {
	opts := valuation.Options{
		Parallel: c.Parallel,
	}
	if c.DiscountRate > 0 {
		opts.DiscountRate = models.Float(c.DiscountRate)
	}
	if c.TerminalGrowth > 0 {
		opts.TerminalGrowth = models.Float(c.TerminalGrowth)
	}
	if c.Multiples.PE > 0 {
		opts.Multiples.PE = models.Float(c.Multiples.PE)
	}
	if c.Multiples.PBV > 0 {
		opts.Multiples.PBV = models.Float(c.Multiples.PBV)
	}
	if c.Multiples.EVEBITDA > 0 {
		opts.Multiples.EVEBITDA = models.Float(c.Multiples.EVEBITDA)
	}
	return opts
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fairsight/config.yaml (home directory)
//  3. /etc/fairsight/config.yaml (system)
//
// Environment variables override config file values.
// Format: FAIRSIGHT_<SECTION>_<KEY>, e.g., FAIRSIGHT_VALUATION_DISCOUNT_RATE
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fairsight"))
	v.AddConfigPath("/etc/fairsight")

	v.SetEnvPrefix("FAIRSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FAIRSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Valuation defaults: a conventional moderate-growth profile.
	v.SetDefault("valuation.growth_rate", 0.05)
	v.SetDefault("valuation.discount_rate", 0.10)
	v.SetDefault("valuation.terminal_growth", 0.02)
	v.SetDefault("valuation.projection_years", 5)
	v.SetDefault("valuation.parallel", false)

	// Datasource defaults
	v.SetDefault("datasource.cache_ttl", 300) // 5 minutes
	v.SetDefault("datasource.rate_limit", 5)
	v.SetDefault("datasource.news_feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s")
	v.SetDefault("datasource.news_limit", 10)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
