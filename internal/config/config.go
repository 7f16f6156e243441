package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for chassis.
type Config struct {
	LogLevel  string            `mapstructure:"log_level"`
	Overrides map[string]string `mapstructure:"overrides"` // capability to identity pins
	Cache     CacheConfig       `mapstructure:"cache"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Source    SourceConfig      `mapstructure:"source"`
	Fetch     FetchConfig       `mapstructure:"fetch"`
}

// CacheConfig holds settings for the cache adapters. MaxEntries applies to
// the in-process cache; Dir and TTL to the file-backed one.
type CacheConfig struct {
	MaxEntries int    `mapstructure:"max_entries"`
	Dir        string `mapstructure:"dir"`
	TTL        string `mapstructure:"ttl"`
}

// StorageConfig holds settings for the storage adapter.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SourceConfig holds settings for the config-source adapter.
type SourceConfig struct {
	Path string `mapstructure:"path"`
}

// FetchConfig holds settings for the fetch adapter.
type FetchConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("cache.max_entries", 0)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("storage.path", "chassis.db")
	v.SetDefault("source.path", "chassis.yaml")
	v.SetDefault("fetch.rate_limit", 10.0)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/chassis")
	}

	// Environment variables
	v.SetEnvPrefix("CHASSIS")
	v.AutomaticEnv()

	_ = v.BindEnv("log_level", "CHASSIS_LOG_LEVEL")
	_ = v.BindEnv("storage.path", "CHASSIS_STORAGE_PATH")
	_ = v.BindEnv("source.path", "CHASSIS_SOURCE_PATH")
	_ = v.BindEnv("fetch.rate_limit", "CHASSIS_FETCH_RATE_LIMIT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Resolve storage path to absolute so adapters are cwd-independent
	if cfg.Storage.Path != "" && !filepath.IsAbs(cfg.Storage.Path) {
		abs, err := filepath.Abs(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("resolving storage path: %w", err)
		}
		cfg.Storage.Path = abs
	}

	return &cfg, nil
}
