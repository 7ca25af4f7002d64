package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Price source kinds
const (
	PriceSourcePostgres = "postgres"
	PriceSourceHTTP     = "http"
	PriceSourceCSV      = "csv"
)

// State store kinds
const (
	StateStoreRedis = "redis"
	StateStoreFile  = "file"
)

// Config holds all process configuration for the in/out engine
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Strategy YAML (thresholds, universe, weights, schedule)
	StrategyFile string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Price history input
	Prices PriceConfig

	// Execution output
	Broker BrokerConfig

	// Engine state persistence
	State StateConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	ChartDir       string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// PriceConfig selects where daily closes come from
type PriceConfig struct {
	Source       string // postgres | http | csv
	APIURL       string
	APIKey       string
	CSVPath      string
	RequestsPerS float64
}

// BrokerConfig holds the execution collaborator endpoint.
// An empty URL means orders are only logged (paper mode).
type BrokerConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// StateConfig holds engine state persistence settings
type StateConfig struct {
	Store    string // redis | file
	FilePath string
	Key      string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:         getEnv("PORT", "8089"),
		Env:          getEnv("ENV", "development"),
		StrategyFile: getEnv("STRATEGY_FILE", "config/strategy/inout.yaml"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Prices: PriceConfig{
			Source:       getEnv("PRICE_SOURCE", PriceSourcePostgres),
			APIURL:       getEnv("PRICE_API_URL", ""),
			APIKey:       getEnv("PRICE_API_KEY", ""),
			CSVPath:      getEnv("PRICE_CSV_PATH", ""),
			RequestsPerS: getEnvAsFloat("PRICE_API_RPS", 5),
		},

		Broker: BrokerConfig{
			URL:     getEnv("BROKER_URL", ""),
			APIKey:  getEnv("BROKER_API_KEY", ""),
			Timeout: getEnvAsDuration("BROKER_TIMEOUT", "10s"),
		},

		State: StateConfig{
			Store:    getEnv("STATE_STORE", StateStoreFile),
			FilePath: getEnv("STATE_FILE", "data/inout_state.json"),
			Key:      getEnv("STATE_KEY", "inout:state"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		ChartDir:       getEnv("CHART_DIR", "data/charts"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Prices.Source {
	case PriceSourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when PRICE_SOURCE=postgres")
		}
	case PriceSourceHTTP:
		if c.Prices.APIURL == "" {
			return fmt.Errorf("PRICE_API_URL is required when PRICE_SOURCE=http")
		}
	case PriceSourceCSV:
		if c.Prices.CSVPath == "" {
			return fmt.Errorf("PRICE_CSV_PATH is required when PRICE_SOURCE=csv")
		}
	default:
		return fmt.Errorf("PRICE_SOURCE must be one of: postgres, http, csv")
	}

	switch c.State.Store {
	case StateStoreFile:
		if c.State.FilePath == "" {
			return fmt.Errorf("STATE_FILE is required when STATE_STORE=file")
		}
	case StateStoreRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true when STATE_STORE=redis")
		}
	default:
		return fmt.Errorf("STATE_STORE must be one of: redis, file")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

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
