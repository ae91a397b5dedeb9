package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Analytics configuration.
	AlignResolution       time.Duration
	SeriesMaxPoints       int
	ResultCacheSize       int
	DefaultWindow         time.Duration
	SummaryPublishEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	resolution, err := time.ParseDuration(sharedcfg.EnvOrDefault("ALIGN_RESOLUTION", "15m"))
	if err != nil || resolution <= 0 {
		return nil, errors.New("invalid ALIGN_RESOLUTION")
	}

	// A zero window means "all stored data".
	window, err := time.ParseDuration(sharedcfg.EnvOrDefault("DEFAULT_WINDOW", "72h"))
	if err != nil || window < 0 {
		return nil, errors.New("invalid DEFAULT_WINDOW")
	}

	maxPoints, err := parseNonNegativeInt("SERIES_MAX_POINTS", 10000)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseNonNegativeInt("RESULT_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	publish, err := strconv.ParseBool(sharedcfg.EnvOrDefault("SUMMARY_PUBLISH_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid SUMMARY_PUBLISH_ENABLED")
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-gauge-readings"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "series-summaries"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "flood-analytics"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		AlignResolution:       resolution,
		SeriesMaxPoints:       maxPoints,
		ResultCacheSize:       cacheSize,
		DefaultWindow:         window,
		SummaryPublishEnabled: publish,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.SummaryPublishEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when SUMMARY_PUBLISH_ENABLED is true")
	}

	return cfg, nil
}

func parseNonNegativeInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}
