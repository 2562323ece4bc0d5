// Package config loads application configuration and wires the logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures the inspection results page fetcher.
type FetchConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	FixturePath string  `yaml:"fixture_path" mapstructure:"fixture_path"`
}

// GeocodeConfig configures the geocoding client.
type GeocodeConfig struct {
	GoogleKey    string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	CacheTTLDays int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
}

// StoreConfig configures the geocode cache / run log backend.
// Driver is "sqlite", "postgres", or "none".
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// OutputConfig configures where the FeatureCollection is written.
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml in the working directory and
// HEALTHMAP_* environment variables, applying defaults for everything else.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEALTHMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fetch.base_url", "http://info.kingcounty.gov/health/ehs/foodsafety/inspections/Results.aspx")
	v.SetDefault("fetch.user_agent", "healthmap-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 1)
	v.SetDefault("geocode.rate_per_sec", 2)
	v.SetDefault("geocode.concurrency", 4)
	v.SetDefault("geocode.cache_ttl_days", 30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "healthmap.db")
	v.SetDefault("output.path", "inspection_map.json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; only a malformed file is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
