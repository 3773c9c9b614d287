package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	aws_pkg "order-service/aws"
	"order-service/pricing"
)

// Config holds all configuration for the order service.
type Config struct {
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	Pricing pricing.Config

	KafkaBrokers string
	KafkaTopic   string
	// SNS topic for order lifecycle events
	OrderSNSTopicARN string
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8083"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:       getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		OrderSNSTopicARN: os.Getenv("ORDER_SNS_TOPIC_ARN"),
	}

	var err error
	cfg.Pricing, err = loadPricingConfig()
	if err != nil {
		return nil, err
	}

	// Override DB credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if creds, err := sm.GetDBCredentials(context.Background()); err == nil {
				cfg.applyDBCredentials(creds)
			}
		}
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

// applyDBCredentials overlays non-empty secret fields onto the env-sourced
// database settings.
func (c *Config) applyDBCredentials(creds *aws_pkg.DBCredentials) {
	if creds.User != "" {
		c.PostgresUser = creds.User
	}
	if creds.Password != "" {
		c.PostgresPassword = creds.Password
	}
	if creds.DBName != "" {
		c.PostgresDB = creds.DBName
	}
	if creds.Host != "" {
		c.PostgresHost = creds.Host
	}
	if creds.Port != "" {
		c.PostgresPort = creds.Port
	}
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

// loadPricingConfig reads the monetary constants, falling back to the
// defaults the calculator ships with.
func loadPricingConfig() (pricing.Config, error) {
	cfg := pricing.DefaultConfig()

	if v := os.Getenv("TAX_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil || rate.IsNegative() {
			return cfg, fmt.Errorf("invalid TAX_RATE %q", v)
		}
		cfg.TaxRate = rate
	}
	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		threshold, err := decimal.NewFromString(v)
		if err != nil || threshold.IsNegative() {
			return cfg, fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD %q", v)
		}
		cfg.FreeShippingThreshold = threshold
	}
	if v := os.Getenv("SHIPPING_FEE"); v != "" {
		fee, err := decimal.NewFromString(v)
		if err != nil || fee.IsNegative() {
			return cfg, fmt.Errorf("invalid SHIPPING_FEE %q", v)
		}
		cfg.ShippingFee = fee
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
