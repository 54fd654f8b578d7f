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
// SSOT: every environment variable is read here only.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	Classifier ClassifierConfig
	MarketData MarketDataConfig

	// Decision engine defaults
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ClassifierConfig holds the external sentiment classifier configuration.
type ClassifierConfig struct {
	BaseURL         string
	StreamURL       string // websocket endpoint for live signals
	APIKey          string
	RateLimitPerSec int
}

// MarketDataConfig holds the realized-move data source configuration.
type MarketDataConfig struct {
	BaseURL string
	// FallbackHTMLURL serves the sector performance table as HTML when the
	// JSON endpoint is unavailable.
	FallbackHTMLURL string
}

// EngineConfig holds decision engine thresholds.
type EngineConfig struct {
	UpThreshold   float64
	DownThreshold float64
	MinConsensus  float64
	HalfLifeDays  float64
	UseSignalAge  bool
}

// Load reads configuration from environment variables.
// SSOT: only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Classifier: ClassifierConfig{
			BaseURL:         getEnv("CLASSIFIER_BASE_URL", "http://localhost:9301"),
			StreamURL:       getEnv("CLASSIFIER_STREAM_URL", ""),
			APIKey:          getEnv("CLASSIFIER_API_KEY", ""),
			RateLimitPerSec: getEnvAsInt("CLASSIFIER_RATE_LIMIT", 5),
		},

		MarketData: MarketDataConfig{
			BaseURL:         getEnv("MARKETDATA_BASE_URL", "http://localhost:9302"),
			FallbackHTMLURL: getEnv("MARKETDATA_HTML_URL", ""),
		},

		Engine: EngineConfig{
			UpThreshold:   getEnvAsFloat("ENGINE_UP_THRESHOLD", 0.8),
			DownThreshold: getEnvAsFloat("ENGINE_DOWN_THRESHOLD", -0.8),
			MinConsensus:  getEnvAsFloat("ENGINE_MIN_CONSENSUS", 0.6),
			HalfLifeDays:  getEnvAsFloat("ENGINE_HALF_LIFE_DAYS", 7.0),
			UseSignalAge:  getEnvAsBool("ENGINE_USE_SIGNAL_AGE", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.UpThreshold <= 0 || c.Engine.DownThreshold >= 0 {
		return fmt.Errorf("engine thresholds must straddle zero (up=%v, down=%v)",
			c.Engine.UpThreshold, c.Engine.DownThreshold)
	}
	if c.Engine.MinConsensus < 0 || c.Engine.MinConsensus > 1 {
		return fmt.Errorf("ENGINE_MIN_CONSENSUS must be in [0, 1]")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
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
			filepath.Join(exeDir, "..", "..", ".env"),
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
