package server

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	_ "image/png" // Decoder for test clients that upload PNG frames.

	"github.com/smart-classroom/activity-monitor/internal/classifier"
	"github.com/smart-classroom/activity-monitor/internal/logger"
	"github.com/smart-classroom/activity-monitor/internal/session"
	"github.com/smart-classroom/activity-monitor/internal/vision"
)

const maxUploadMemory = 10 << 20

// handleAnalyze ingests one camera frame: the image is decoded, cached
// for the live view, classified, and the resulting record persisted.
// Input errors return 400 without mutating any persisted state.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONWithStatus(w, map[string]any{"error": "No image provided"}, http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSONWithStatus(w, map[string]any{"error": "No image provided"}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	studentID := r.FormValue("student_id")
	if studentID == "" {
		studentID = "unknown"
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeJSONWithStatus(w, map[string]any{"error": "No image provided"}, http.StatusBadRequest)
		return
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		s.metrics.DecodeErrors.Add(1)
		writeJSONWithStatus(w, map[string]any{"error": "Failed to decode image"}, http.StatusBadRequest)
		return
	}

	// Store the frame for the live view before analysis; the stream path
	// always emits JPEG parts, so non-JPEG uploads are transcoded once.
	jpegData := raw
	if format != "jpeg" {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			writeJSONWithStatus(w, map[string]any{"error": "Failed to decode image"}, http.StatusBadRequest)
			return
		}
		jpegData = buf.Bytes()
	}
	s.cache.Update(studentID, jpegData)
	s.metrics.FramesIngested.Add(1)
	s.metrics.ActiveStreams.Store(uint64(s.cache.Len()))

	result, err := s.analyze(r, img, jpegData, studentID)
	if err != nil {
		logger.Error("Analyze", "Analysis failed for %s: %v", studentID, err)
		writeJSONWithStatus(w, map[string]any{"error": err.Error()}, http.StatusInternalServerError)
		return
	}

	if err := s.recorder.Record(result); err != nil {
		s.metrics.PersistErrors.Add(1)
		logger.Error("Analyze", "Persist failed for %s: %v", studentID, err)
		writeJSONWithStatus(w, map[string]any{"error": err.Error()}, http.StatusInternalServerError)
		return
	}

	s.metrics.AnalysesTotal.Add(1)
	if result.IsUnusual {
		s.metrics.UnusualTotal.Add(1)
	}
	s.metrics.UpdateAnalyzeLatency(start)

	logger.Info("Analyze", "%s - %s | Active streams: %d", studentID, result.Activity, s.cache.Len())

	writeJSON(w, map[string]any{
		"success":  true,
		"analysis": result,
	})
}

// analyze routes the frame through the primary detector when available,
// otherwise through the fallback heuristics.
func (s *Server) analyze(r *http.Request, img image.Image, jpegData []byte, studentID string) (session.AnalysisResult, error) {
	gray := vision.Grayscale(img)
	bounds := img.Bounds()

	result := session.AnalysisResult{
		StudentID:       studentID,
		ObjectsDetected: []string{},
		BrightnessLevel: session.Round2(gray.Brightness()),
		Timestamp:       time.Now().Format(time.RFC3339),
		ImageDimensions: fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
	}

	if !s.detector.Available() {
		s.metrics.FallbackTotal.Add(1)
		faceCount := vision.CountFaceRegions(img)
		edgeDensity := session.Round2(gray.EdgeDensity())

		outcome := classifier.ClassifyFallback(faceCount, edgeDensity, result.BrightnessLevel)
		result.Activity = outcome.Activity
		result.IsUnusual = outcome.Unusual
		result.ConfidenceScore = session.Round2(outcome.Confidence)
		result.FaceCount = &faceCount
		result.EdgeDensity = &edgeDensity
		return result, nil
	}

	detection, err := s.detector.Detect(r.Context(), jpegData)
	if err != nil {
		s.metrics.DetectorErrors.Add(1)
		return result, fmt.Errorf("detection failed: %w", err)
	}

	headDown := detection.Keypoints.HeadDown()
	handRaised := detection.Keypoints.HandRaised()

	outcome := classifier.Classify(classifier.Signals{
		Objects:    detection.Labels(),
		HeadDown:   headDown,
		HandRaised: handRaised,
	})

	result.Activity = outcome.Activity
	result.IsUnusual = outcome.Unusual
	result.ConfidenceScore = session.Round2(outcome.Confidence)
	result.ObjectsDetected = append(result.ObjectsDetected, detection.Labels()...)
	result.HeadDown = &headDown
	result.HandRaised = &handRaised
	return result, nil
}
