package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":5000", cfg.HTTPAddr)
	require.Equal(t, "analysis_data", cfg.DataDir)
	require.Equal(t, 33*time.Millisecond, cfg.StreamInterval)
	require.Equal(t, 5*time.Second, cfg.DetectorTimeout)
	require.Equal(t, "*", cfg.CORSOrigin)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("DATA_DIR", "/tmp/monitor")
	t.Setenv("DETECTOR_URL", "http://detector:9000")
	t.Setenv("STREAM_INTERVAL_MS", "100")
	t.Setenv("LOG_COLOR", "false")

	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "/tmp/monitor", cfg.DataDir)
	require.Equal(t, "http://detector:9000", cfg.DetectorURL)
	require.Equal(t, 100*time.Millisecond, cfg.StreamInterval)
	require.False(t, cfg.LogColor)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("STREAM_INTERVAL_MS", "fast")
	t.Setenv("LOG_COLOR", "maybe")

	cfg := Load()
	require.Equal(t, 33*time.Millisecond, cfg.StreamInterval)
	require.True(t, cfg.LogColor)
}
