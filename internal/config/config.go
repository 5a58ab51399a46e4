package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Reference data location: a directory or an http(s) base URL.
	DataSource       string
	RainfallFile     string
	CatalogFile      string
	DataFetchTimeout time.Duration
	DataLoadRetries  int

	// Sizing policy overrides.
	StorageDays   float64
	YieldFraction float64

	RateLimitRPS   float64
	RateLimitBurst int

	// Snapshot feed; disabled when no brokers are configured.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
	KafkaGroupID       string
}

// SnapshotFeedEnabled reports whether the Kafka snapshot consumer should run.
func (c *Config) SnapshotFeedEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("DATA_FETCH_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	retries, err := parsePositiveInt("DATA_LOAD_RETRIES", 5)
	if err != nil {
		return nil, err
	}
	storageDays, err := parsePositiveFloat("STORAGE_DAYS", 21)
	if err != nil {
		return nil, err
	}
	yieldFraction, err := parsePositiveFloat("YIELD_FRACTION", 0.06)
	if err != nil {
		return nil, err
	}
	if yieldFraction > 1 {
		return nil, errors.New("invalid YIELD_FRACTION: must not exceed 1")
	}
	rps, err := parsePositiveFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	burst, err := parsePositiveInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataSource:       sharedcfg.EnvOrDefault("DATA_SOURCE", "./data"),
		RainfallFile:     sharedcfg.EnvOrDefault("RAINFALL_FILE", "plzRainData.json"),
		CatalogFile:      sharedcfg.EnvOrDefault("CATALOG_FILE", "cisternProducts.json"),
		DataFetchTimeout: fetchTimeout,
		DataLoadRetries:  retries,

		StorageDays:   storageDays,
		YieldFraction: yieldFraction,

		RateLimitRPS:   rps,
		RateLimitBurst: burst,

		KafkaBrokers:       brokers,
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "cistern-reference-data"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "cistern-configurator"),
	}

	if cfg.RainfallFile == "" {
		return nil, errors.New("RAINFALL_FILE is required")
	}
	if cfg.CatalogFile == "" {
		return nil, errors.New("CATALOG_FILE is required")
	}
	if cfg.SnapshotFeedEnabled() && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return v, nil
}
