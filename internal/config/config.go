package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Logging LoggingConfig `mapstructure:"logging"`
	View    ViewConfig    `mapstructure:"view"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BackendConfig holds movie backend settings
type BackendConfig struct {
	URL      string `mapstructure:"url"`
	BasePath string `mapstructure:"base_path"`
	Timeout  int    `mapstructure:"timeout"` // seconds
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Shared level, used when a component level is not set
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	App  LogLevelConfig `mapstructure:"app"`
	HTTP LogLevelConfig `mapstructure:"http"`
}

// LogLevelConfig represents log level configuration for a specific component
type LogLevelConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// ViewConfig holds view-model behavior switches
type ViewConfig struct {
	DefaultSort   string `mapstructure:"default_sort"`
	StrictGenres  bool   `mapstructure:"strict_genres"`
	GuardInFlight bool   `mapstructure:"guard_in_flight"`
}

// MetricsConfig holds client-side metrics settings
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var cfg *Config

// bindEnvWithAlternatives binds a viper key to environment variables with alternative names
// This allows supporting both MOVIEDESK_BACKEND_URL and MOVIE_API_URL for the same config key
func bindEnvWithAlternatives(key string, alternatives ...string) {
	viper.BindEnv(key)
	for _, alt := range alternatives {
		if value := os.Getenv(alt); value != "" {
			viper.Set(key, value)
			break
		}
	}
}

// Load reads configuration from .env, the config file and environment variables
func Load() error {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path; an empty path searches
// the default locations.
func LoadFile(path string) error {
	// .env is optional
	_ = godotenv.Load()

	viper.Reset()
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/moviedesk")
	}

	setDefaults()

	viper.SetEnvPrefix("MOVIEDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvWithAlternatives("backend.url", "MOVIE_API_URL")
	viper.BindEnv("backend.base_path")
	viper.BindEnv("backend.timeout")

	bindEnvWithAlternatives("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format")
	viper.BindEnv("logging.app.level")
	viper.BindEnv("logging.http.level")

	viper.BindEnv("view.default_sort")
	viper.BindEnv("view.strict_genres")
	viper.BindEnv("view.guard_in_flight")

	viper.BindEnv("metrics.enabled")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" || !os.IsNotExist(err) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := loaded.validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg = loaded
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &Config{}
	}
	return cfg
}

// Set replaces the current configuration (primarily for testing)
func Set(c *Config) {
	cfg = c
}

func setDefaults() {
	viper.SetDefault("backend.url", "http://localhost:8080")
	viper.SetDefault("backend.base_path", "/movieapi")
	viper.SetDefault("backend.timeout", 30)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("view.default_sort", "id")
	viper.SetDefault("view.strict_genres", true)
	viper.SetDefault("view.guard_in_flight", false)

	viper.SetDefault("metrics.enabled", true)
}

func (c *Config) validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.url must be an absolute http(s) URL, got %q", c.Backend.URL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}

	c.View.DefaultSort = strings.ToLower(strings.TrimSpace(c.View.DefaultSort))
	validSorts := map[string]bool{"id": true, "year": true, "rating": true}
	if c.View.DefaultSort != "" && !validSorts[c.View.DefaultSort] {
		return fmt.Errorf("view.default_sort must be one of: id, year, rating")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats := map[string]bool{"json": true, "text": true}

	if c.Logging.Format != "" && !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.App.Level != "" && !validLevels[c.Logging.App.Level] {
		return fmt.Errorf("logging.app.level must be one of: debug, info, warn, error")
	}
	if c.Logging.HTTP.Level != "" && !validLevels[c.Logging.HTTP.Level] {
		return fmt.Errorf("logging.http.level must be one of: debug, info, warn, error")
	}

	return nil
}

// BaseURL joins backend.url and backend.base_path
func (c *Config) BaseURL() string {
	base := strings.TrimRight(c.Backend.URL, "/")
	path := strings.Trim(c.Backend.BasePath, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// RequestTimeout returns the per-request backend timeout
func (c *Config) RequestTimeout() time.Duration {
	if c.Backend.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Backend.Timeout) * time.Second
}

// GetAppLogLevel returns the log level for application logging
// Priority: logging.app.level → logging.level → "info"
func (c *Config) GetAppLogLevel() string {
	if c.Logging.App.Level != "" {
		return c.Logging.App.Level
	}
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	return "info"
}

// GetHTTPLogLevel returns the log level for backend client logging
// Priority: logging.http.level → logging.level → "info"
func (c *Config) GetHTTPLogLevel() string {
	if c.Logging.HTTP.Level != "" {
		return c.Logging.HTTP.Level
	}
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	return "info"
}
