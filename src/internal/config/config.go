package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultConnectionString = "host=localhost port=5432 dbname=funds_transfer_db user=postgres password=postgres sslmode=disable"
	defaultHTTPAddr         = ":8080"
	defaultChannelID        = "LedgerApp"
	defaultChannelKey       = "LedgerKey001"
	defaultExchangeRatesURL = "https://www.frankfurter.app/latest"
	defaultRefreshInterval  = time.Minute
	defaultRetryBaseDelay   = 500 * time.Millisecond
	defaultRetryMaxAttempts = 3
	defaultKafkaTopic       = "transaction-events"
)

type Config struct {
	DatabaseDSN   string
	MigrationsDir string
	HTTPAddr      string
	ChannelID     string
	ChannelKey    string

	ExchangeRatesURL            string
	ExchangeRefreshInitialDelay time.Duration
	ExchangeRefreshInterval     time.Duration

	TransactionRetryBaseDelay   time.Duration
	TransactionRetryMaxAttempts int

	// KafkaBrokers empty means event publishing is disabled.
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() (Config, error) {
	refreshInterval, err := durationEnv("EXCHANGE_REFRESH_INTERVAL", defaultRefreshInterval)
	if err != nil {
		return Config{}, err
	}

	refreshInitialDelay, err := durationEnv("EXCHANGE_REFRESH_INITIAL_DELAY", refreshInterval)
	if err != nil {
		return Config{}, err
	}

	retryBaseDelay, err := durationEnv("TRANSACTION_RETRY_BASE_DELAY", defaultRetryBaseDelay)
	if err != nil {
		return Config{}, err
	}

	retryMaxAttempts, err := intEnv("TRANSACTION_RETRY_MAX_ATTEMPTS", defaultRetryMaxAttempts)
	if err != nil {
		return Config{}, err
	}
	if retryMaxAttempts < 1 {
		return Config{}, fmt.Errorf("TRANSACTION_RETRY_MAX_ATTEMPTS must be at least 1, got %d", retryMaxAttempts)
	}

	return Config{
		DatabaseDSN:   stringEnv("DATABASE_DSN", defaultConnectionString),
		MigrationsDir: stringEnv("MIGRATIONS_DIR", filepath.Join("src", "migrations")),
		HTTPAddr:      stringEnv("HTTP_ADDR", defaultHTTPAddr),
		ChannelID:     stringEnv("CHANNEL_ID", defaultChannelID),
		ChannelKey:    stringEnv("CHANNEL_KEY", defaultChannelKey),

		ExchangeRatesURL:            stringEnv("EXCHANGE_RATES_URL", defaultExchangeRatesURL),
		ExchangeRefreshInitialDelay: refreshInitialDelay,
		ExchangeRefreshInterval:     refreshInterval,

		TransactionRetryBaseDelay:   retryBaseDelay,
		TransactionRetryMaxAttempts: retryMaxAttempts,

		KafkaBrokers: listEnv("KAFKA_BROKERS"),
		KafkaTopic:   stringEnv("KAFKA_TOPIC", defaultKafkaTopic),
	}, nil
}

func stringEnv(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}

	return parsed, nil
}

func intEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}

	return parsed, nil
}

func listEnv(name string) []string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
