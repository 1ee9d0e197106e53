package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional; monitor runs memory-only without it)
	Database DatabaseConfig

	// Redis (optional shared snapshot cache)
	Redis RedisConfig

	// Monitoring engine
	Monitor MonitorConfig

	// External APIs
	Yahoo        YahooConfig
	AlphaVantage AlphaVantageConfig

	// Outbound alerts
	Webhook WebhookConfig

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

// MonitorConfig holds check-loop configuration
type MonitorConfig struct {
	CheckInterval    time.Duration // time between check passes
	CacheTTL         time.Duration // snapshot freshness window
	MaxConcurrent    int           // in-flight fetches per check pass
	MarketHoursOnly  bool          // skip checks outside the trading session
	SuppressDegraded bool          // no alert state transitions on synthetic data
}

// YahooConfig holds the primary market data provider configuration
type YahooConfig struct {
	BaseURL     string
	ProxyRoutes []string // pass-through prefixes tried after the direct call
}

// AlphaVantageConfig holds the backup market data provider configuration
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// WebhookConfig holds the outbound alert sink configuration
type WebhookConfig struct {
	URL      string
	Username string
	Timezone string // IANA name used for alert timestamps
}

// Load reads configuration from environment variables
// SSOT: this is the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
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

		// Monitoring engine
		Monitor: MonitorConfig{
			CheckInterval:    getEnvAsDuration("CHECK_INTERVAL", "5m"),
			CacheTTL:         getEnvAsDuration("SNAPSHOT_CACHE_TTL", "2m"),
			MaxConcurrent:    getEnvAsInt("MAX_CONCURRENT_CHECKS", 4),
			MarketHoursOnly:  getEnvAsBool("MARKET_HOURS_ONLY", false),
			SuppressDegraded: getEnvAsBool("SUPPRESS_DEGRADED_ALERTS", true),
		},

		// External APIs
		Yahoo: YahooConfig{
			BaseURL:     getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			ProxyRoutes: getEnvAsList("YAHOO_PROXY_ROUTES", "https://api.allorigins.win/raw?url=,https://corsproxy.io/?"),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:  getEnv("ALPHAVANTAGE_API_KEY", ""),
			BaseURL: getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co"),
		},

		// Outbound alerts
		Webhook: WebhookConfig{
			URL:      getEnv("ALERT_WEBHOOK_URL", ""),
			Username: getEnv("ALERT_WEBHOOK_USERNAME", "MA Monitor"),
			Timezone: getEnv("ALERT_TIMEZONE", "Europe/Berlin"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
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

	if c.Monitor.CheckInterval < time.Second {
		return fmt.Errorf("CHECK_INTERVAL must be at least 1s")
	}

	if c.Monitor.MaxConcurrent < 1 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be at least 1")
	}

	if _, err := time.LoadLocation(c.Webhook.Timezone); err != nil {
		return fmt.Errorf("ALERT_TIMEZONE is not a valid IANA timezone: %w", err)
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
