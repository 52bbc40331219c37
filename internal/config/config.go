package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	Rules     RulesConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Data      DataConfig
	API       APIConfig
	Scheduler SchedulerConfig
}

// RulesConfig locates the rules file and the optional engine overrides
type RulesConfig struct {
	Path             string
	EngineConfigPath string
	ReloadCron       string // empty disables the reload job
}

// DatabaseConfig holds persistence configuration
type DatabaseConfig struct {
	Driver          string // "sqlite" or "postgres"
	SQLitePath      string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	CacheTTL     time.Duration
}

// DataConfig holds market data provider configuration
type DataConfig struct {
	Provider     string // "yahoo" or "mock"
	Period       string
	Interval     string
	BaseURL      string
	RateLimitRPS float64
	Timeout      time.Duration
}

// APIConfig holds REST API configuration
type APIConfig struct {
	Port         int
	JWTSecret    string // empty disables authentication
	RateLimitRPS int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SchedulerConfig holds watchlist scheduling configuration
type SchedulerConfig struct {
	Enabled   bool
	Cron      string
	Watchlist []string
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Rules: RulesConfig{
			Path:             getEnv("RULES_PATH", "rules/rules.dsl"),
			EngineConfigPath: getEnv("ENGINE_CONFIG_PATH", ""),
			ReloadCron:       getEnv("RULES_RELOAD_CRON", "*/30 * * * * *"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			SQLitePath:      getEnv("SQLITE_PATH", "advisor.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "stock_advisor"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			CacheTTL:     getEnvAsDuration("CACHE_TTL", 15*time.Minute),
		},
		Data: DataConfig{
			Provider:     strings.ToLower(getEnv("DATA_PROVIDER", "yahoo")),
			Period:       getEnv("DATA_PERIOD", "60d"),
			Interval:     getEnv("DATA_INTERVAL", "1d"),
			BaseURL:      getEnv("YAHOO_BASE_URL", ""),
			RateLimitRPS: getEnvAsFloat("YAHOO_RATE_LIMIT_RPS", 2),
			Timeout:      getEnvAsDuration("YAHOO_TIMEOUT", 30*time.Second),
		},
		API: APIConfig{
			Port:         getEnvAsInt("API_PORT", 8090),
			JWTSecret:    getEnv("API_JWT_SECRET", ""),
			RateLimitRPS: getEnvAsInt("API_RATE_LIMIT_RPS", 20),
			ReadTimeout:  getEnvAsDuration("API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("API_WRITE_TIMEOUT", 60*time.Second),
		},
		Scheduler: SchedulerConfig{
			Enabled:   getEnvAsBool("SCHEDULER_ENABLED", false),
			Cron:      getEnv("SCHEDULER_CRON", "0 0 22 * * 1-5"),
			Watchlist: getEnvAsStringSlice("WATCHLIST", []string{}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Rules.Path == "" {
		return fmt.Errorf("RULES_PATH is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when REDIS_ENABLED=true")
	}
	if c.Data.Provider == "" {
		return fmt.Errorf("DATA_PROVIDER is required")
	}
	if c.Data.Period == "" || c.Data.Interval == "" {
		return fmt.Errorf("DATA_PERIOD and DATA_INTERVAL are required")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535")
	}
	if c.Scheduler.Enabled && len(c.Scheduler.Watchlist) == 0 {
		return fmt.Errorf("WATCHLIST must contain at least one symbol when SCHEDULER_ENABLED=true")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Split by comma and trim spaces
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, strings.ToUpper(trimmed))
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
