package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	DataDir      string
	BoundaryFile string

	// Plot settings. Width and height are in inches.
	PlotFormat string
	PlotWidth  float64
	PlotHeight float64

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Summary publishing is enabled when KafkaBrokers is non-empty.
	KafkaBrokers      []string
	KafkaSummaryTopic string
}

// PublishEnabled reports whether summaries can be published to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	width, err := parseInches("PLOT_WIDTH", 6)
	if err != nil {
		return nil, err
	}
	height, err := parseInches("PLOT_HEIGHT", 6)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		DataDir:           sharedcfg.EnvOrDefault("FARS_DATA_DIR", "data"),
		BoundaryFile:      os.Getenv("FARS_BOUNDARY_FILE"),
		PlotFormat:        strings.ToLower(sharedcfg.EnvOrDefault("PLOT_FORMAT", "png")),
		PlotWidth:         width,
		PlotHeight:        height,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		KafkaBrokers:      brokers,
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "fars-monthly-summary"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("FARS_DATA_DIR is required")
	}
	switch cfg.PlotFormat {
	case "png", "svg", "pdf":
	default:
		return nil, fmt.Errorf("invalid PLOT_FORMAT %q: want png, svg or pdf", cfg.PlotFormat)
	}
	if cfg.PublishEnabled() && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_SUMMARY_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseInches(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v > 100 {
		return 0, fmt.Errorf("invalid %s: must be inches in (0, 100]", key)
	}
	return v, nil
}
