package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource         string
	FreeStreamVelocity float64
	FetchTimeout       time.Duration
	FetchAttempts      int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration

	ChartWidth     int
	ChartHeight    int
	ChartCacheSize int

	// Kafka profile publishing.
	KafkaBrokers      []string
	KafkaProfileTopic string
	PublishEnabled    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sessionTTL, err := parseDuration("SESSION_TTL", "30m")
	if err != nil {
		return nil, err
	}

	freeStream, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FREE_STREAM_VELOCITY", "1.0"), 64)
	if err != nil || !ValidFreeStream(freeStream) {
		return nil, errors.New("invalid FREE_STREAM_VELOCITY")
	}

	ints := map[string]int{}
	for _, v := range []struct {
		key      string
		fallback int
	}{
		{"FETCH_ATTEMPTS", 3},
		{"CHART_WIDTH", 800},
		{"CHART_HEIGHT", 400},
		{"CHART_CACHE_SIZE", 256},
	} {
		n, err := parsePositiveInt(v.key, v.fallback)
		if err != nil {
			return nil, err
		}
		ints[v.key] = n
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}
	publishEnabled := len(brokers) > 0
	if v := os.Getenv("PUBLISH_ENABLED"); v != "" {
		publishEnabled = v == "true"
	}

	cfg := &Config{
		DataSource:         sharedcfg.EnvOrDefault("DATA_SOURCE", "data/mock/boundary_layer.csv"),
		FreeStreamVelocity: freeStream,
		FetchTimeout:       fetchTimeout,
		FetchAttempts:      ints["FETCH_ATTEMPTS"],

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,
		SessionTTL:      sessionTTL,

		ChartWidth:     ints["CHART_WIDTH"],
		ChartHeight:    ints["CHART_HEIGHT"],
		ChartCacheSize: ints["CHART_CACHE_SIZE"],

		KafkaBrokers:      brokers,
		KafkaProfileTopic: sharedcfg.EnvOrDefault("KAFKA_PROFILE_TOPIC", "boundary-layer-profiles"),
		PublishEnabled:    publishEnabled,
	}

	if cfg.DataSource == "" {
		return nil, errors.New("DATA_SOURCE is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text", "pretty":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.PublishEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("PUBLISH_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.PublishEnabled && cfg.KafkaProfileTopic == "" {
		return nil, errors.New("KAFKA_PROFILE_TOPIC is required when publishing")
	}

	return cfg, nil
}

// ValidFreeStream reports whether v is usable as a free-stream velocity: a
// finite positive number.
func ValidFreeStream(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
