package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// SSOT: every environment variable is read in this package and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	FMP FMPConfig

	// Strategy
	Strategy StrategyConfig

	// Scheduler
	ScanSchedule string // cron expression for the daily scan job

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey  string
	BaseURL string

	// Requests per second against the FMP API
	RateLimit float64
}

// StrategyConfig holds the scan rule parameters.
// Defaults match the documented strategy: open on an earnings-day drop
// between -30% and -5%, close on a -10% stop-loss or after 50 calendar days.
type StrategyConfig struct {
	EntryReturnMin    string
	EntryReturnMax    string
	StopLossThreshold string
	MaxHoldingDays    int

	// Universe cache
	UniverseCacheTTL time.Duration

	// Bounded parallelism for per-symbol evaluation
	ScanWorkers int
}

// Load reads configuration from environment variables.
// SSOT: this is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		FMP: FMPConfig{
			APIKey:    getEnv("FMP_API_KEY", ""),
			BaseURL:   getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/stable"),
			RateLimit: getEnvAsFloat("FMP_RATE_LIMIT", 5),
		},

		// Strategy. Thresholds are kept as strings so they survive the
		// trip into exact decimal arithmetic without a float detour.
		Strategy: StrategyConfig{
			EntryReturnMin:    getEnv("ENTRY_RETURN_MIN", "-0.30"),
			EntryReturnMax:    getEnv("ENTRY_RETURN_MAX", "-0.05"),
			StopLossThreshold: getEnv("STOP_LOSS_THRESHOLD", "-0.10"),
			MaxHoldingDays:    getEnvAsInt("MAX_HOLDING_DAYS", 50),
			UniverseCacheTTL:  getEnvAsDuration("UNIVERSE_CACHE_TTL", "24h"),
			ScanWorkers:       getEnvAsInt("SCAN_WORKERS", 4),
		},

		// Scheduler: weekdays at 22:30 UTC, after the US close
		ScanSchedule: getEnv("SCAN_SCHEDULE", "0 30 22 * * MON-FRI"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Strategy.MaxHoldingDays <= 0 {
		return fmt.Errorf("MAX_HOLDING_DAYS must be positive")
	}

	if c.Strategy.ScanWorkers <= 0 {
		return fmt.Errorf("SCAN_WORKERS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
