// Package config reads service settings from the environment. A .env file in
// the working directory is loaded first when present; variables already set
// in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

const (
	BrokerRedis  = "redis"
	BrokerMemory = "memory"
)

type Config struct {
	ServiceName    string
	HTTPPort       string
	GRPCPort       string
	DBDriver       string
	DBDSN          string
	RedisAddr      string
	Broker         string
	OutboxInterval time.Duration
	ConsumerGroup  string
	ConsumerName   string
	InboxTTL       time.Duration
	TracingEnabled bool
	SeedData       bool
	Topics         messaging.Topics
}

// Defaults are the per-service fallbacks used when a variable is unset.
type Defaults struct {
	ServiceName string
	HTTPPort    string
	GRPCPort    string
	DBDSN       string
}

// Load reads .env (if any) and the environment.
func Load(d Defaults) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(d)
}

// FromEnv reads the environment only.
func FromEnv(d Defaults) (Config, error) {
	hostname, _ := os.Hostname()
	cfg := Config{
		ServiceName:   getEnv("OTEL_SERVICE_NAME", d.ServiceName),
		HTTPPort:      getEnv("PORT", d.HTTPPort),
		GRPCPort:      getEnv("GRPC_PORT", d.GRPCPort),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBDSN:         getEnv("DB_DSN", d.DBDSN),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Broker:        getEnv("BROKER", BrokerRedis),
		ConsumerGroup: getEnv("CONSUMER_GROUP", d.ServiceName),
		ConsumerName:  getEnv("CONSUMER_NAME", d.ServiceName+"-"+hostname),
		Topics: messaging.Topics{
			PaymentRequest:             getEnv("TOPIC_PAYMENT_REQUEST", messaging.TopicPaymentRequest),
			PaymentResponse:            getEnv("TOPIC_PAYMENT_RESPONSE", messaging.TopicPaymentResponse),
			RestaurantApprovalRequest:  getEnv("TOPIC_RESTAURANT_APPROVAL_REQUEST", messaging.TopicRestaurantApprovalRequest),
			RestaurantApprovalResponse: getEnv("TOPIC_RESTAURANT_APPROVAL_RESPONSE", messaging.TopicRestaurantApprovalResponse),
		},
	}

	var err error
	if cfg.OutboxInterval, err = getDuration("OUTBOX_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.InboxTTL, err = getDuration("INBOX_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.TracingEnabled, err = getBool("TRACING_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.SeedData, err = getBool("SEED_DATA", true); err != nil {
		return Config{}, err
	}

	switch cfg.Broker {
	case BrokerRedis, BrokerMemory:
	default:
		return Config{}, fmt.Errorf("config: BROKER must be %q or %q, got %q", BrokerRedis, BrokerMemory, cfg.Broker)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
