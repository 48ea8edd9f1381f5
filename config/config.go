// Package config has the configuration of the speclist tool
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// DefaultSpeclistURL is where UniProt publishes the species list
const DefaultSpeclistURL = "https://www.uniprot.org/docs/speclist.txt"

// Config holds all application configuration
type Config struct {
	SpeclistURL       string
	SpeclistPath      string // Fetch target, and the input of parse-only runs
	SpeclistCSVPath   string
	SkipFetch         bool
	FetchTimeout      time.Duration
	Env               Environment
	LogLevel          string
	LogDir            string // Empty disables the rotating log file
	LogRetentionWeeks int
	MaxLogFileSize    int64
	MetricsTextfile   string // Empty disables the textfile export
	Port              string
	Address           string
	UpdateTimes       string // gocron At() format, e.g. "06:00;18:00"
	MaxRequestBody    int64
	MaxHeaderSize     int64
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		SpeclistURL:       getEnvWithDefault("SPECLIST_URL", DefaultSpeclistURL),
		SpeclistPath:      getEnvWithDefault("SPECLIST_PATH", "speclist.txt"),
		SpeclistCSVPath:   getEnvWithDefault("SPECLIST_CSV_PATH", "speclist.csv"),
		SkipFetch:         getBoolEnvWithDefault("SKIP_FETCH", false),
		FetchTimeout:      getDurationEnvWithDefault("FETCH_TIMEOUT", 5*time.Minute),
		Env:               Environment(strings.ToLower(getEnvWithDefault("ENV", string(EnvDevelopment)))),
		LogLevel:          strings.ToLower(os.Getenv("LOG_LEVEL")), // Empty picks the level from ENV
		LogDir:            os.Getenv("LOG_DIR"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MetricsTextfile:   os.Getenv("METRICS_TEXTFILE"),
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		UpdateTimes:       getEnvWithDefault("UPDATE_TIMES", "06:00;18:00"),
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576), // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),  // 1MB default
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validateURL(cfg.SpeclistURL); err != nil {
		return fmt.Errorf("invalid SPECLIST_URL: %w", err)
	}

	if err := validatePaths(cfg.SpeclistPath, cfg.SpeclistCSVPath); err != nil {
		return fmt.Errorf("invalid SPECLIST_PATH/SPECLIST_CSV_PATH: %w", err)
	}

	if err := validateFetchTimeout(cfg.FetchTimeout); err != nil {
		return fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateUpdateTimes(cfg.UpdateTimes); err != nil {
		return fmt.Errorf("invalid UPDATE_TIMES: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	return nil
}

// validateURL validates the SPECLIST_URL environment variable
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("SPECLIST_URL must be a valid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("SPECLIST_URL must use http or https, got: %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("SPECLIST_URL must have a host")
	}

	return nil
}

// validatePaths checks the input and output paths do not collide
func validatePaths(source, output string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("SPECLIST_PATH cannot be empty")
	}

	if strings.TrimSpace(output) == "" {
		return fmt.Errorf("SPECLIST_CSV_PATH cannot be empty")
	}

	if filepath.Clean(source) == filepath.Clean(output) {
		return fmt.Errorf("SPECLIST_CSV_PATH must differ from SPECLIST_PATH, both are %s", source)
	}

	return nil
}

// validateFetchTimeout validates the FETCH_TIMEOUT environment variable
func validateFetchTimeout(timeout time.Duration) error {
	if timeout < time.Second {
		return fmt.Errorf("FETCH_TIMEOUT is too short (min 1s), got: %s", timeout)
	}

	if timeout > time.Hour {
		return fmt.Errorf("FETCH_TIMEOUT is too long (max 1h), got: %s", timeout)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	if ip := net.ParseIP(address); ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env Environment) error {
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	}

	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", env)
}

// validateLogLevel validates the LOG_LEVEL environment variable, empty is allowed
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return nil
	}

	validLevels := []string{"debug", "info", "warn", "error"}

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateUpdateTimes validates the UPDATE_TIMES environment variable
func validateUpdateTimes(times string) error {
	if strings.TrimSpace(times) == "" {
		return fmt.Errorf("UPDATE_TIMES cannot be empty")
	}

	for _, t := range strings.Split(times, ";") {
		if _, err := time.Parse("15:04", strings.TrimSpace(t)); err != nil {
			return fmt.Errorf("UPDATE_TIMES entries must be HH:MM, got: %q", t)
		}
	}

	return nil
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnvWithDefault gets an environment variable as bool with a default value
func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault gets an environment variable as time.Duration with a default value
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"SPECLIST_URL",
		"SPECLIST_PATH",
		"SPECLIST_CSV_PATH",
		"SKIP_FETCH",
		"FETCH_TIMEOUT",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"METRICS_TEXTFILE",
		"PORT",
		"ADDRESS",
		"UPDATE_TIMES",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
	}
}
