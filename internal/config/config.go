package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Payment     PaymentConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig is used for the session cart store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  string // duration string, e.g. "72h"
}

// KafkaConfig enables order lifecycle event publishing when Brokers is set;
// empty means events are disabled.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PaymentConfig configures the hosted checkout provider
type PaymentConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string // verifies incoming webhooks (X-Payment-Signature)
	SuccessURL    string
	CancelURL     string
	Currency      string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CART_TTL", "72h")
	viper.SetDefault("PAYMENT_CURRENCY", "usd")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       0,
			CartTTL:  getEnvOrViper("CART_TTL", "72h"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(getEnvOrViper("KAFKA_BROKERS", "")),
			Topic:   getEnvOrViper("KAFKA_ORDER_TOPIC", "order-events"),
		},
		Payment: PaymentConfig{
			BaseURL:       strings.TrimSpace(getEnvOrViper("PAYMENT_BASE_URL", "")),
			APIKey:        strings.TrimSpace(getEnvOrViper("PAYMENT_API_KEY", "")),
			WebhookSecret: strings.TrimSpace(getEnvOrViper("PAYMENT_WEBHOOK_SECRET", "")),
			SuccessURL:    strings.TrimSpace(getEnvOrViper("PAYMENT_SUCCESS_URL", "")),
			CancelURL:     strings.TrimSpace(getEnvOrViper("PAYMENT_CANCEL_URL", "")),
			Currency:      getEnvOrViper("PAYMENT_CURRENCY", "usd"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Payment.APIKey == "" {
		return nil, fmt.Errorf("PAYMENT_API_KEY is required")
	}
	if cfg.Payment.WebhookSecret == "" {
		return nil, fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
