package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tabreport/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Session  SessionConfig
	Upload   UploadConfig
	Coercion CoercionConfig
	Charts   ChartConfig
	LogLevel string
}

// ServerConfig holds web UI server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// APIConfig holds JSON API server settings
type APIConfig struct {
	Port string
}

// SessionConfig controls how long uploaded tables are held
type SessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

// UploadConfig bounds what the loader accepts
type UploadConfig struct {
	MaxBytes    int64
	MaxRows     int
	Concurrency int
}

// CoercionConfig tunes numeric detection during schema inference
type CoercionConfig struct {
	AllowThousandsSeparators bool
	AllowParenNegatives      bool
	AllowCurrencySymbols     bool
}

// ChartConfig holds chart rendering defaults
type ChartConfig struct {
	WidthInches   float64
	HeightInches  float64
	Format        string
	HistogramBins int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		API:      *loadAPIConfig(),
		Session:  *loadSessionConfig(),
		Upload:   *loadUploadConfig(),
		Coercion: *loadCoercionConfig(),
		Charts:   *loadChartConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadAPIConfig() *APIConfig {
	return &APIConfig{
		Port: getEnvOrDefault("API_PORT", "8081"),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		TTL:         getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
		MaxSessions: getEnvIntOrDefault("MAX_SESSIONS", 256),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes:    int64(getEnvIntOrDefault("UPLOAD_MAX_BYTES", 50*1024*1024)),
		MaxRows:     getEnvIntOrDefault("UPLOAD_MAX_ROWS", 1_000_000),
		Concurrency: getEnvIntOrDefault("UPLOAD_CONCURRENCY", 4),
	}
}

func loadCoercionConfig() *CoercionConfig {
	return &CoercionConfig{
		AllowThousandsSeparators: getEnvBoolOrDefault("COERCE_THOUSANDS", false),
		AllowParenNegatives:      getEnvBoolOrDefault("COERCE_PAREN_NEGATIVES", false),
		AllowCurrencySymbols:     getEnvBoolOrDefault("COERCE_CURRENCY", false),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		WidthInches:   getEnvFloatOrDefault("CHART_WIDTH_IN", 8),
		HeightInches:  getEnvFloatOrDefault("CHART_HEIGHT_IN", 5),
		Format:        strings.ToLower(getEnvOrDefault("CHART_FORMAT", "svg")),
		HistogramBins: getEnvIntOrDefault("CHART_HISTOGRAM_BINS", 30),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if _, err := strconv.Atoi(config.API.Port); err != nil {
		return errors.ConfigInvalid("API_PORT must be numeric")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Session.MaxSessions <= 0 {
		return errors.ConfigInvalid("MAX_SESSIONS must be positive")
	}
	if config.Upload.MaxBytes <= 0 || config.Upload.MaxRows <= 0 {
		return errors.ConfigInvalid("upload limits must be positive")
	}
	if config.Upload.Concurrency <= 0 {
		return errors.ConfigInvalid("UPLOAD_CONCURRENCY must be positive")
	}
	switch config.Charts.Format {
	case "svg", "png":
	default:
		return errors.ConfigInvalid("CHART_FORMAT must be svg or png")
	}
	if config.Charts.WidthInches <= 0 || config.Charts.HeightInches <= 0 {
		return errors.ConfigInvalid("chart dimensions must be positive")
	}
	if config.Charts.HistogramBins <= 0 {
		return errors.ConfigInvalid("CHART_HISTOGRAM_BINS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
