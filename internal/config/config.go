package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ca-srg/goodreader/internal/types"
	env "github.com/netflix/go-env"
)

// Type alias for Config
type Config = types.Config

const (
	defaultTimeout      = 15 * time.Second
	maxTimeout          = 5 * time.Minute
	defaultRateLimit    = 2.0
	defaultMaxBodyBytes = 8 << 20
	maxBodyBytes        = 1 << 30
)

// Load loads configuration from environment variables and the optional YAML file.
// Values set in the environment win over the file, and the file wins over defaults.
func Load(path string) (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	filePath, explicit, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if filePath != "" {
		if err := applyFile(&config, filePath, explicit); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	config.BaseURL = strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid GOODREADER_BASE_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("GOODREADER_BASE_URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return fmt.Errorf("GOODREADER_BASE_URL must include a host")
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.Timeout > maxTimeout {
		config.Timeout = maxTimeout
	}

	config.UserAgent = strings.TrimSpace(config.UserAgent)
	if config.UserAgent == "" {
		return fmt.Errorf("GOODREADER_USER_AGENT cannot be empty")
	}

	if config.RateLimit <= 0 {
		config.RateLimit = defaultRateLimit
	}
	if config.RateLimit > 50 {
		config.RateLimit = 50
	}
	if config.RateBurst < 1 {
		config.RateBurst = 1
	}

	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	if config.MaxBodyBytes > maxBodyBytes {
		config.MaxBodyBytes = maxBodyBytes
	}

	config.GenrePages = clamp(config.GenrePages, 1, 100)
	config.ShelfPages = clamp(config.ShelfPages, 1, 25)
	config.PageSize = clamp(config.PageSize, 5, 100)
	if config.DescriptionWidth < 0 {
		config.DescriptionWidth = 0
	}

	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	if config.LogLevel == "" {
		config.LogLevel = "warn"
	}

	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	switch config.LogFormat {
	case "":
		config.LogFormat = "text"
	case "text", "json":
	default:
		return fmt.Errorf("GOODREADER_LOG_FORMAT must be text or json, got %q", config.LogFormat)
	}

	return nil
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
