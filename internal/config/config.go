// Package config loads application configuration from config.yaml, the
// environment and a .env file, with sane defaults for every knob.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Locate   LocateConfig   `yaml:"locate" mapstructure:"locate"`
	Rules    RulesConfig    `yaml:"rules" mapstructure:"rules"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RegistryConfig configures the ICO register download.
type RegistryConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	DownloadPage string `yaml:"download_page" mapstructure:"download_page"`
	TempDir      string `yaml:"temp_dir" mapstructure:"temp_dir"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
}

// OverpassConfig configures the Overpass API client.
type OverpassConfig struct {
	Endpoints      []string `yaml:"endpoints" mapstructure:"endpoints"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int      `yaml:"max_retries" mapstructure:"max_retries"`
	QueryDelaySecs float64  `yaml:"query_delay_secs" mapstructure:"query_delay_secs"`
	Area           string   `yaml:"area" mapstructure:"area"`
}

// LocateConfig configures the geolocation run.
type LocateConfig struct {
	MinResults int `yaml:"min_results" mapstructure:"min_results"`
	BatchSize  int `yaml:"batch_size" mapstructure:"batch_size"`
}

// RulesConfig points at optional YAML data files overriding the built-in
// classification rules and search-name overrides.
type RulesConfig struct {
	File          string `yaml:"file" mapstructure:"file"`
	OverridesFile string `yaml:"overrides_file" mapstructure:"overrides_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded into the environment first, if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CAMATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "camatlas.db")
	v.SetDefault("registry.base_url", "https://ico.org.uk")
	v.SetDefault("registry.download_page", "/about-the-ico/what-we-do/register-of-fee-payers/download-the-register/")
	v.SetDefault("registry.temp_dir", "/tmp/camatlas")
	v.SetDefault("registry.user_agent", "camatlas/1.0")
	v.SetDefault("overpass.endpoints", []string{
		"https://overpass-api.de/api/interpreter",
		"https://overpass.kumi.systems/api/interpreter",
	})
	v.SetDefault("overpass.timeout_secs", 180)
	v.SetDefault("overpass.max_retries", 2)
	v.SetDefault("overpass.query_delay_secs", 1.0)
	v.SetDefault("overpass.area", "GB")
	v.SetDefault("locate.min_results", 1)
	v.SetDefault("locate.batch_size", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
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
