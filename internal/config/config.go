package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Bank       BankConfig
	MarketData MarketDataConfig
	Jobs       JobsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// BankConfig holds configuration for the bank-aggregation provider.
// TokenKey is the base64-encoded fernet key used to encrypt stored access tokens.
type BankConfig struct {
	BaseURL  string
	ClientID string
	Secret   string
	TokenKey string
}

// MarketDataConfig holds configuration for the historical price provider
type MarketDataConfig struct {
	BaseURL string
}

// JobsConfig holds configuration for scheduled background jobs
type JobsConfig struct {
	QuoteRefreshSchedule string
	QuoteRefreshEnabled  bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stockbucket.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Bank: BankConfig{
			BaseURL:  getEnv("BANK_BASE_URL", "https://sandbox.plaid.com"),
			ClientID: getEnv("BANK_CLIENT_ID", ""),
			Secret:   getEnv("BANK_SECRET", ""),
			TokenKey: getEnv("BANK_TOKEN_KEY", ""),
		},
		MarketData: MarketDataConfig{
			BaseURL: getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com"),
		},
		Jobs: JobsConfig{
			QuoteRefreshSchedule: getEnv("QUOTE_REFRESH_SCHEDULE", "30 6 * * *"),
			QuoteRefreshEnabled:  getEnv("QUOTE_REFRESH_ENABLED", "true") == "true",
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
