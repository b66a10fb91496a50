package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	errInvalidPort       = errors.New("config: invalid PORT number")
	errInvalidCacheTTL   = errors.New("config: CACHE_TTL must be positive")
	errInvalidFetchLimit = errors.New("config: FETCH_TIMEOUT must be between 1s and 60s")
	errInvalidRecCap     = errors.New("config: RECOMMENDATION_CAP must be between 1 and 20")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port              string
	GinMode           string
	LogLevel          string
	DataDir           string
	DatabaseDSN       string // empty disables Postgres persistence
	CacheTTL          time.Duration
	CacheMaxEntries   int
	FetchTimeout      time.Duration
	RateLimitRPS      float64
	RateLimitBurst    float64
	RecommendationCap int
	ReportRetention   time.Duration // zero or negative disables pruning
}

// Load reads .env files when present, then builds a Config from environment
// variables with sensible defaults.
func Load() (Config, error) {
	loadEnvFiles()

	cfg := Config{
		Port:              getEnv("PORT", "8082"),
		GinMode:           getEnv("GIN_MODE", "release"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		DatabaseDSN:       getEnv("DATABASE_DSN", ""),
		CacheTTL:          getEnvAsDuration("CACHE_TTL", time.Hour),
		CacheMaxEntries:   getEnvAsInt("CACHE_MAX_ENTRIES", 1000),
		FetchTimeout:      getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),
		RateLimitRPS:      getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:    getEnvAsFloat("RATE_LIMIT_BURST", 5),
		RecommendationCap: getEnvAsInt("RECOMMENDATION_CAP", 8),
		ReportRetention:   getEnvAsDuration("REPORT_RETENTION", 30*24*time.Hour),
	}

	return cfg, cfg.validate()
}

func loadEnvFiles() {
	// Try .env.development first (for local development), then regular .env.
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: got %s", errInvalidCacheTTL, c.CacheTTL)
	}
	if c.FetchTimeout < time.Second || c.FetchTimeout > 60*time.Second {
		return fmt.Errorf("%w: got %s", errInvalidFetchLimit, c.FetchTimeout)
	}
	if c.RecommendationCap < 1 || c.RecommendationCap > 20 {
		return fmt.Errorf("%w: got %d", errInvalidRecCap, c.RecommendationCap)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsFloat(key string, fallback float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return v
}
