// Package server exposes the HTTP surface of the activity monitor: image
// ingest and analysis, live MJPEG views, session history, statistics and
// the embedded dashboard.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/smart-classroom/activity-monitor/internal/config"
	"github.com/smart-classroom/activity-monitor/internal/detector"
	"github.com/smart-classroom/activity-monitor/internal/logger"
	"github.com/smart-classroom/activity-monitor/internal/metrics"
	"github.com/smart-classroom/activity-monitor/internal/session"
	"github.com/smart-classroom/activity-monitor/internal/stream"
)

const defaultSessionLimit = 50

// Detector is the narrow view of the detection adapter the server needs.
// It is satisfied by *detector.Client and stubbed in tests.
type Detector interface {
	Available() bool
	Detect(ctx context.Context, jpegData []byte) (*detector.Result, error)
}

// Server wires the analysis pipeline, session recorder and frame cache
// behind the HTTP API.
type Server struct {
	cfg      config.Config
	detector Detector
	recorder *session.Recorder
	cache    *stream.FrameCache
	metrics  *metrics.Metrics
}

// New returns a configured server.
func New(cfg config.Config, det Detector, recorder *session.Recorder, cache *stream.FrameCache, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		detector: det,
		recorder: recorder,
		cache:    cache,
		metrics:  m,
	}
}

// Handler exposes the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/analyze", s.cors(s.recoverable(s.handleAnalyze)))
	mux.HandleFunc("/api/stream/{student_id}", s.cors(s.handleStream))
	mux.HandleFunc("/api/active_streams", s.cors(s.handleActiveStreams))
	mux.HandleFunc("/api/sessions", s.cors(s.handleSessions))
	mux.HandleFunc("/api/stats", s.cors(s.handleStats))
	mux.HandleFunc("/api/clear", s.cors(s.handleClear))
	mux.HandleFunc("/api/debug", s.cors(s.handleDebug))

	return mux
}

// cors applies the permissive CORS policy the camera firmware and
// dashboard expect.
func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("student_id")
	logger.Info("Stream", "Stream requested for: %s", studentID)

	s.metrics.StreamClients.Add(1)
	defer s.metrics.StreamClients.Add(^uint64(0))

	stream.ServeMJPEG(w, r, s.cache, studentID, s.cfg.StreamInterval)
}

func (s *Server) handleActiveStreams(w http.ResponseWriter, r *http.Request) {
	streams := s.cache.Subjects()
	logger.Debug("Stream", "Active streams requested: %v", streams)
	writeJSON(w, map[string]any{"streams": streams})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	sessions := s.recorder.List(limit)
	writeJSON(w, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.recorder.Stats())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.recorder.Reset(); err != nil {
		s.metrics.PersistErrors.Add(1)
		logger.Error("Sessions", "Reset failed: %v", err)
		writeJSONWithStatus(w, map[string]any{"error": err.Error()}, http.StatusInternalServerError)
		return
	}

	logger.Info("Sessions", "All stored data cleared")
	writeJSON(w, map[string]any{"success": true, "message": "All data cleared"})
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	available := s.detector.Available()
	writeJSON(w, map[string]any{
		"status":          "running",
		"active_streams":  s.cache.Subjects(),
		"total_sessions":  s.recorder.Count(),
		"recent_sessions": s.recorder.List(5),
		"statistics":      s.recorder.Statistics(),
		"models_loaded": map[string]any{
			"object_detector": available,
			"pose_detector":   available,
		},
	})
}

// recoverable wraps a handler so an unexpected panic surfaces as a 500
// with the error message, with the full stack in the operator logs.
func (s *Server) recoverable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("HTTP", "Panic in %s: %v\n%s", r.URL.Path, rec, debug.Stack())
				writeJSONWithStatus(w, map[string]any{"error": fmt.Sprint(rec)}, http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	writeJSONWithStatus(w, payload, http.StatusOK)
}

func writeJSONWithStatus(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		_, _ = fmt.Fprintf(w, `{"error":"%s"}`, err.Error())
	}
}
