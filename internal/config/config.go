package config

import (
	"os"
)

// Config holds the service configuration, sourced from the environment.
type Config struct {
	Port         string
	DatabasePath string
	Environment  string

	// Upstream price collaborators.
	MetalsAPIURL string
	QuotesAPIURL string
	RatesAPIURL  string
}

// Load reads configuration from environment variables with local defaults.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "zakat.db"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		MetalsAPIURL: getEnv("METALS_API_URL", "http://localhost:9100/api"),
		QuotesAPIURL: getEnv("QUOTES_API_URL", "http://localhost:9100/api"),
		RatesAPIURL:  getEnv("RATES_API_URL", "https://open.er-api.com/v6/latest"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
