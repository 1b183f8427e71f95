package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	// Analysis counters
	AnalysesTotal  atomic.Uint64
	UnusualTotal   atomic.Uint64
	FallbackTotal  atomic.Uint64
	FramesIngested atomic.Uint64

	// Error counters
	DecodeErrors   atomic.Uint64
	DetectorErrors atomic.Uint64
	PersistErrors  atomic.Uint64

	// Latency tracking
	AnalyzeLatencyMs atomic.Uint64 // Last end-to-end analysis latency in ms

	// Live state
	ActiveStreams atomic.Uint64 // Subjects with a cached frame
	StreamClients atomic.Uint64 // Open MJPEG connections
	FallbackMode  atomic.Uint64 // 0 = primary detector, 1 = fallback

	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	gauges := []struct {
		name string
		help string
		load func() uint64
	}{
		{"activity_analyses_total", "Total images analyzed", m.AnalysesTotal.Load},
		{"activity_unusual_total", "Total analyses flagged unusual", m.UnusualTotal.Load},
		{"activity_fallback_total", "Total analyses taken through the fallback path", m.FallbackTotal.Load},
		{"activity_frames_ingested_total", "Total frames stored in the live cache", m.FramesIngested.Load},
		{"activity_decode_errors_total", "Total image decode failures", m.DecodeErrors.Load},
		{"activity_detector_errors_total", "Total detector sidecar call failures", m.DetectorErrors.Load},
		{"activity_persist_errors_total", "Total persistence write failures", m.PersistErrors.Load},
		{"activity_analyze_latency_ms", "End-to-end analysis latency in milliseconds", m.AnalyzeLatencyMs.Load},
		{"activity_active_streams", "Number of subjects with a live frame", m.ActiveStreams.Load},
		{"activity_stream_clients", "Number of open MJPEG connections", m.StreamClients.Load},
		{"activity_fallback_mode", "Fallback classifier active (0=primary, 1=fallback)", m.FallbackMode.Load},
	}

	for _, g := range gauges {
		load := g.load
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return float64(load()) },
		))
	}
}

// UpdateAnalyzeLatency records the latency of an analysis request.
func (m *Metrics) UpdateAnalyzeLatency(start time.Time) {
	m.AnalyzeLatencyMs.Store(uint64(time.Since(start).Milliseconds()))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server
func (m *Metrics) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
