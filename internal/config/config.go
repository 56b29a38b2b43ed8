package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
)

type Config struct {
	// API server settings
	APIAddr  string
	APIKey   string
	DevMode  bool
	LogLevel string

	// GeckoTerminal settings
	GeckoBaseURL      string
	GeckoAPIKey       string
	GeckoAPIKeyHeader string
	UpstreamTimeout   time.Duration

	// Response cache settings
	CacheBackend string
	CacheTTL     time.Duration
	CacheSize    int

	// CacheBroadcast fans memory cache purges out to every replica over Redis
	CacheBroadcast bool

	// Redis settings
	RedisAddr string
	RedisDB   int

	// Ranking settings
	TopN       int
	TxWindow   string
	RankNulls  string
	RankColumn string

	// Token page settings
	ProbeImages bool
}

func Load() *Config {
	return &Config{
		// API
		APIAddr:  getEnv("API_ADDR", ":8090"),
		APIKey:   getEnv("API_KEY", ""),
		DevMode:  getBoolEnv("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// GeckoTerminal
		GeckoBaseURL:      getEnv("GECKO_BASE_URL", "https://api.geckoterminal.com/api/v2"),
		GeckoAPIKey:       getEnv("GECKO_API_KEY", ""),
		GeckoAPIKeyHeader: getEnv("GECKO_API_KEY_HEADER", "x-cg-pro-api-key"),
		UpstreamTimeout:   getDurationEnv("UPSTREAM_TIMEOUT", 15*time.Second),

		// Cache
		CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		CacheTTL:     getDurationEnv("CACHE_TTL", 60*time.Second),
		CacheSize:    getIntEnv("CACHE_SIZE", 256),

		CacheBroadcast: getBoolEnv("CACHE_BROADCAST", false),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getIntEnv("REDIS_DB", 0),

		// Ranking
		TopN:      getIntEnv("TOP_N", 3),
		TxWindow:  getEnv("TX_WINDOW", "h1"),
		RankNulls: strings.ToLower(getEnv("RANK_NULLS", "zero")),

		RankColumn: strings.TrimSpace(getEnv("RANK_COLUMN", constants.DefaultRankColumn)),

		// Tokens
		ProbeImages: getBoolEnv("PROBE_IMAGES", true),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIAddr) == "" {
		errs = append(errs, errors.New("API_ADDR is required"))
	}
	if strings.TrimSpace(c.GeckoBaseURL) == "" {
		errs = append(errs, errors.New("GECKO_BASE_URL is required"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}

	switch c.CacheBackend {
	case "memory":
		if c.CacheSize < 1 {
			errs = append(errs, errors.New("CACHE_SIZE must be at least 1"))
		}
	case "redis":
		if strings.TrimSpace(c.RedisAddr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis cache backend"))
		}
	case "none":
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q must be memory, redis or none", c.CacheBackend))
	}
	if c.CacheBroadcast {
		if c.CacheBackend != "memory" {
			errs = append(errs, errors.New("CACHE_BROADCAST requires the memory cache backend"))
		}
		if strings.TrimSpace(c.RedisAddr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for CACHE_BROADCAST"))
		}
	}
	if c.CacheBackend != "none" && c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}

	if c.TopN < 1 {
		errs = append(errs, errors.New("TOP_N must be at least 1"))
	}
	switch c.TxWindow {
	case "m5", "m15", "m30", "h1", "h6", "h24":
	default:
		errs = append(errs, fmt.Errorf("TX_WINDOW %q is not a known transaction window", c.TxWindow))
	}
	if c.RankColumn == "" {
		errs = append(errs, errors.New("RANK_COLUMN is required"))
	}
	switch c.RankNulls {
	case "zero", "last":
	default:
		errs = append(errs, fmt.Errorf("RANK_NULLS %q must be zero or last", c.RankNulls))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
