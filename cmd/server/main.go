package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof" // Enable pprof
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smart-classroom/activity-monitor/internal/config"
	"github.com/smart-classroom/activity-monitor/internal/detector"
	"github.com/smart-classroom/activity-monitor/internal/logger"
	"github.com/smart-classroom/activity-monitor/internal/metrics"
	"github.com/smart-classroom/activity-monitor/internal/server"
	"github.com/smart-classroom/activity-monitor/internal/session"
	"github.com/smart-classroom/activity-monitor/internal/stream"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP server address")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Metrics server address")
	flag.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "pprof server address")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for persisted analysis data")
	flag.StringVar(&cfg.DetectorURL, "detector", cfg.DetectorURL, "Base URL of the model sidecar (empty disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error, silent)")
	flag.BoolVar(&cfg.LogColor, "log-color", cfg.LogColor, "Enable colored log output")
	flag.Parse()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, cfg.LogColor)

	logger.Info("Main", "Smart student activity monitor starting...")
	logger.Info("Main", "Local storage: %s/", cfg.DataDir)

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open data store: %v", err)
	}
	recorder, err := session.NewRecorder(store)
	if err != nil {
		log.Fatalf("Failed to load persisted sessions: %v", err)
	}
	logger.Info("Main", "Loaded %d persisted sessions", recorder.Count())

	m := metrics.New()

	// Probe the model sidecar once. If it is not up now, the server runs
	// on the fallback classifier for the rest of the process lifetime.
	det := detector.NewClient(cfg.DetectorURL, cfg.DetectorTimeout)
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), cfg.DetectorTimeout)
	if err := det.Probe(probeCtx); err != nil {
		logger.Warn("Main", "Model sidecar unavailable, running in basic detection mode: %v", err)
		m.FallbackMode.Store(1)
	}
	cancelProbe()

	cache := stream.NewFrameCache()
	srv := server.New(cfg, det, recorder, cache, m)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("Main", "Starting pprof server on %s", cfg.PprofAddr)
		if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
			logger.Warn("Main", "pprof server error: %v", err)
		}
	}()

	go func() {
		logger.Info("Main", "Starting metrics server on %s", cfg.MetricsAddr)
		if err := m.StartServer(cfg.MetricsAddr); err != nil {
			logger.Warn("Main", "Metrics server error: %v", err)
		}
	}()

	go func() {
		logger.Info("Main", "Dashboard: http://localhost%s", cfg.HTTPAddr)
		logger.Info("Main", "Camera endpoint: POST http://localhost%s/api/analyze", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Main", "Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Main", "Shutdown error: %v", err)
	}
	logger.Info("Main", "Server stopped")
}
