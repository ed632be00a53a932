package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", "sqlite://storeadmin.db"),
		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "0.0.0.0"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
