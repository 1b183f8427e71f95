package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/smart-classroom/activity-monitor/internal/logger"
)

// Config defines the runtime configuration for the analysis server.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	PprofAddr   string

	// DataDir holds the persisted session log and statistics documents.
	DataDir string

	// DetectorURL is the base URL of the object/pose model sidecar.
	// An empty value disables the primary detector entirely.
	DetectorURL     string
	DetectorTimeout time.Duration

	// StreamInterval paces MJPEG frame emission (~30fps by default).
	StreamInterval time.Duration

	CORSOrigin string

	LogLevel string
	LogColor bool
}

// Default returns a config aligned with the reference server behavior.
func Default() Config {
	return Config{
		HTTPAddr:        ":5000",
		MetricsAddr:     ":9090",
		PprofAddr:       ":6060",
		DataDir:         "analysis_data",
		DetectorURL:     "http://localhost:8500",
		DetectorTimeout: 5 * time.Second,
		StreamInterval:  33 * time.Millisecond,
		CORSOrigin:      "*",
		LogLevel:        "info",
		LogColor:        true,
	}
}

// Load builds a Config from a .env file (if present) and the process
// environment, on top of the defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine, system environment is used as-is.
		logger.Debug("Config", "No .env file found, using system environment")
	}

	cfg := Default()
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", cfg.MetricsAddr)
	cfg.PprofAddr = getEnv("PPROF_ADDR", cfg.PprofAddr)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.DetectorURL = getEnv("DETECTOR_URL", cfg.DetectorURL)
	cfg.DetectorTimeout = time.Duration(getEnvInt("DETECTOR_TIMEOUT_MS", int(cfg.DetectorTimeout.Milliseconds()))) * time.Millisecond
	cfg.StreamInterval = time.Duration(getEnvInt("STREAM_INTERVAL_MS", int(cfg.StreamInterval.Milliseconds()))) * time.Millisecond
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogColor = getEnvBool("LOG_COLOR", cfg.LogColor)
	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if boolVal, err := strconv.ParseBool(v); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
