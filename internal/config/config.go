package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Scoring configuration
	Scoring ScoringConfig `mapstructure:"scoring"`

	// Analysis cache configuration
	Cache CacheConfig `mapstructure:"cache"`

	// API keys
	APIs APIConfig `mapstructure:"apis"`

	// Report storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Report sharing configuration
	Reports ReportConfig `mapstructure:"reports"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	Host              string        `mapstructure:"host"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	RateBurst         int           `mapstructure:"rate_burst"`
}

// ScoringConfig holds the aggregator's weight sets and carve-out rules.
// Weights are configuration, not derived values.
type ScoringConfig struct {
	SelfDomains     []string   `mapstructure:"self_domains"`
	SelfTestMode    bool       `mapstructure:"self_test_mode"`
	GracePeriodDays int        `mapstructure:"grace_period_days"`
	SEOWeights      SEOWeights `mapstructure:"seo_weights"`
	GEOWeights      GEOWeights `mapstructure:"geo_weights"`
	NewDomainGEO    GEOWeights `mapstructure:"new_domain_geo_weights"`
}

// SEOWeights weighs the SEO sub-scores in the regular aggregation path.
type SEOWeights struct {
	Technical   float64 `mapstructure:"technical"`
	Content     float64 `mapstructure:"content"`
	Performance float64 `mapstructure:"performance"`
}

// GEOWeights weighs the GEO sub-scores. The new-domain set discounts raw
// visibility, which is unreliable for domains AI systems have not indexed.
type GEOWeights struct {
	Technical  float64 `mapstructure:"technical"`
	Readiness  float64 `mapstructure:"readiness"`
	Visibility float64 `mapstructure:"visibility"`
}

// CacheConfig holds analysis cache settings
type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

// APIConfig holds API keys and endpoints
type APIConfig struct {
	Serper    SerperConfig    `mapstructure:"serper"`
	PageSpeed PageSpeedConfig `mapstructure:"pagespeed"`
}

// SerperConfig holds SERP lookup API configuration
type SerperConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// PageSpeedConfig holds page-speed audit API configuration
type PageSpeedConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// StorageConfig selects and configures the report store backend.
type StorageConfig struct {
	Type     string         `mapstructure:"type"` // "memory", "redis", "postgres"
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig holds postgres connection settings
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ReportConfig holds shareable-report settings
type ReportConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ViewLogCap int    `mapstructure:"view_log_cap"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.geopulse")
	}

	// Set defaults
	setDefaults(v)

	// Bind environment variables
	bindEnvVars(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables
	loadFromEnv(&config)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.requests_per_second", 2)
	v.SetDefault("server.rate_burst", 5)

	// Scoring defaults
	v.SetDefault("scoring.self_domains", []string{"geopulse.dev", "geotest.ai"})
	v.SetDefault("scoring.self_test_mode", true)
	v.SetDefault("scoring.grace_period_days", 180)
	v.SetDefault("scoring.seo_weights.technical", 0.4)
	v.SetDefault("scoring.seo_weights.content", 0.35)
	v.SetDefault("scoring.seo_weights.performance", 0.25)
	v.SetDefault("scoring.geo_weights.technical", 0.3)
	v.SetDefault("scoring.geo_weights.readiness", 0.3)
	v.SetDefault("scoring.geo_weights.visibility", 0.4)
	// Unindexed domains: readiness dominates, raw visibility is discounted.
	v.SetDefault("scoring.new_domain_geo_weights.technical", 0.45)
	v.SetDefault("scoring.new_domain_geo_weights.readiness", 0.45)
	v.SetDefault("scoring.new_domain_geo_weights.visibility", 0.1)

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.capacity", 100)

	// API defaults
	v.SetDefault("apis.serper.endpoint", "https://google.serper.dev/search")
	v.SetDefault("apis.pagespeed.endpoint", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed")

	// Storage defaults
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.postgres.dsn", "")

	// Report defaults
	v.SetDefault("reports.base_url", "https://app.geopulse.dev/reports")
	v.SetDefault("reports.view_log_cap", 1000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("GEOPULSE")
	v.AutomaticEnv()

	// Bind specific env vars
	v.BindEnv("apis.serper.api_key", "SERPER_API_KEY")
	v.BindEnv("apis.pagespeed.api_key", "PAGESPEED_API_KEY")
	v.BindEnv("storage.redis.addr", "REDIS_ADDR")
	v.BindEnv("storage.postgres.dsn", "DATABASE_URL")
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if apiKey := os.Getenv("SERPER_API_KEY"); apiKey != "" {
		config.APIs.Serper.APIKey = apiKey
	}
	if apiKey := os.Getenv("PAGESPEED_API_KEY"); apiKey != "" {
		config.APIs.PageSpeed.APIKey = apiKey
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scoring.GracePeriodDays < 0 {
		return fmt.Errorf("scoring.grace_period_days must not be negative")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive")
	}
	if c.Reports.ViewLogCap <= 0 {
		return fmt.Errorf("reports.view_log_cap must be positive")
	}
	switch c.Storage.Type {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("storage.type must be one of memory, redis, postgres")
	}
	if w := c.Scoring.SEOWeights; w.Technical+w.Content+w.Performance <= 0 {
		return fmt.Errorf("scoring.seo_weights must sum to a positive value")
	}
	if w := c.Scoring.GEOWeights; w.Technical+w.Readiness+w.Visibility <= 0 {
		return fmt.Errorf("scoring.geo_weights must sum to a positive value")
	}
	return nil
}
