package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Logging     LoggingConfig
	Tracing     TracingConfig
	Batch       BatchConfig
	PolicyFile  string
	Environment string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

type BatchConfig struct {
	Workers  int
	FailFast bool
}

func Load() (Config, error) {
	cfg := Config{
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "stdout"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "refunds"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Batch: BatchConfig{
			Workers:  getEnvInt("REFUNDS_BATCH_WORKERS", 4),
			FailFast: getEnvBool("REFUNDS_FAIL_FAST", false),
		},
		PolicyFile:  getEnv("REFUNDS_POLICY_FILE", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Batch.Workers < 1 {
		return Config{}, fmt.Errorf("REFUNDS_BATCH_WORKERS must be at least 1, got %d", cfg.Batch.Workers)
	}
	switch cfg.Tracing.Exporter {
	case "stdout", "otlp", "none":
	default:
		return Config{}, fmt.Errorf("TRACING_EXPORTER must be stdout, otlp or none, got %q", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return Config{}, fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1, got %v", cfg.Tracing.SampleRate)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path without overriding variables
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
