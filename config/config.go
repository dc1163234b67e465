package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/moviecat/catalog"
)

// EnvPrefix prefixes environment overrides, e.g. MOVIECAT_TMDB_API_KEY
const EnvPrefix = "MOVIECAT"

// Load loads the configuration from file and environment. A missing config
// file is only an error when configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".moviecat"))
		}

		// Check /etc
		v.AddConfigPath("/etc/moviecat/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultCachePath is the offline cache directory used when none is set
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "moviecat")
}

// setDefaults sets default configuration values. Every key that may come
// from the environment needs a default so viper can bind it.
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.access_token", "")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", "30s")
	v.SetDefault("tmdb.requests_per_second", 20)
	v.SetDefault("tmdb.burst", 10)

	// Cache defaults
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("cache.limit", catalog.OfflineCacheLimit)

	// Catalog defaults
	v.SetDefault("catalog.fetch_timeout", "15s")
	v.SetDefault("catalog.prefetch_threshold", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.URL == "" {
		return fmt.Errorf("tmdb.url is required")
	}

	if (cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == "your-api-key-here") && cfg.TMDB.AccessToken == "" {
		return fmt.Errorf("tmdb.api_key or tmdb.access_token must be set")
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}

	if cfg.TMDB.RequestsPerSecond < 0 {
		return fmt.Errorf("tmdb.requests_per_second must not be negative")
	}

	if cfg.Cache.Limit < 1 || cfg.Cache.Limit > catalog.OfflineCacheLimit {
		return fmt.Errorf("cache.limit must be between 1 and %d", catalog.OfflineCacheLimit)
	}

	if cfg.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("catalog.fetch_timeout must be positive")
	}

	if cfg.Catalog.PrefetchThreshold < 0 {
		return fmt.Errorf("catalog.prefetch_threshold must not be negative")
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
