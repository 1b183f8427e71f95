package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smart-classroom/activity-monitor/internal/config"
	"github.com/smart-classroom/activity-monitor/internal/detector"
	"github.com/smart-classroom/activity-monitor/internal/metrics"
	"github.com/smart-classroom/activity-monitor/internal/session"
	"github.com/smart-classroom/activity-monitor/internal/stream"
)

type stubDetector struct {
	available bool
	result    *detector.Result
	err       error
}

func (d *stubDetector) Available() bool { return d.available }

func (d *stubDetector) Detect(ctx context.Context, jpegData []byte) (*detector.Result, error) {
	return d.result, d.err
}

func newTestServer(t *testing.T, det Detector) (*Server, *session.Recorder) {
	t.Helper()

	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	recorder, err := session.NewRecorder(store)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.StreamInterval = time.Millisecond

	return New(cfg, det, recorder, stream.NewFrameCache(), metrics.New()), recorder
}

func jpegFrame(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func analyzeRequest(t *testing.T, studentID string, imageData []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", "frame.jpg")
	require.NoError(t, err)
	_, err = fw.Write(imageData)
	require.NoError(t, err)
	if studentID != "" {
		require.NoError(t, w.WriteField("student_id", studentID))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestAnalyzePrimaryPath(t *testing.T) {
	det := &stubDetector{
		available: true,
		result: &detector.Result{
			Objects: []detector.Detection{
				{Label: "person", Confidence: 0.92},
				{Label: "laptop", Confidence: 0.81},
			},
		},
	}
	srv, recorder := newTestServer(t, det)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(t, "cam-1", jpegFrame(t, color.RGBA{120, 120, 120, 255})))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	require.Equal(t, true, payload["success"])

	analysis := payload["analysis"].(map[string]any)
	require.Equal(t, "cam-1", analysis["student_id"])
	require.Equal(t, "Working on Laptop", analysis["activity"])
	require.Equal(t, 0.85, analysis["confidence_score"])
	require.Equal(t, false, analysis["is_unusual"])
	require.Equal(t, "64x48", analysis["image_dimensions"])
	require.Equal(t, false, analysis["head_down"])
	require.Equal(t, false, analysis["hand_raised"])
	require.NotContains(t, analysis, "face_count")
	require.ElementsMatch(t, []any{"person", "laptop"}, analysis["objects_detected"])

	require.Equal(t, 1, recorder.Count())
}

func TestAnalyzeDefaultsStudentID(t *testing.T) {
	det := &stubDetector{available: true, result: &detector.Result{}}
	srv, _ := newTestServer(t, det)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(t, "", jpegFrame(t, color.RGBA{120, 120, 120, 255})))

	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decodeBody(t, rec)["analysis"].(map[string]any)
	require.Equal(t, "unknown", analysis["student_id"])
	require.Equal(t, "Student Absent", analysis["activity"])
}

func TestAnalyzeFallbackPath(t *testing.T) {
	det := &stubDetector{available: false}
	srv, _ := newTestServer(t, det)

	// Bright uniform frame with no faces: absence dominates in fallback.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(t, "cam-1", jpegFrame(t, color.RGBA{150, 150, 150, 255})))

	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decodeBody(t, rec)["analysis"].(map[string]any)
	require.Equal(t, "Student Absent", analysis["activity"])
	require.Equal(t, true, analysis["is_unusual"])
	require.Equal(t, 0.6, analysis["confidence_score"])
	require.Equal(t, float64(0), analysis["face_count"])
	require.Contains(t, analysis, "edge_density")
	require.NotContains(t, analysis, "head_down")
}

func TestAnalyzeMissingImage(t *testing.T) {
	srv, recorder := newTestServer(t, &stubDetector{available: true})

	req := httptest.NewRequest("POST", "/api/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No image provided", decodeBody(t, rec)["error"])
	require.Equal(t, 0, recorder.Count())
}

func TestAnalyzeUndecodableImage(t *testing.T) {
	srv, recorder := newTestServer(t, &stubDetector{available: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(t, "cam-1", []byte("not an image")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Failed to decode image", decodeBody(t, rec)["error"])
	require.Equal(t, 0, recorder.Count())
}

func TestAnalyzeDetectorError(t *testing.T) {
	det := &stubDetector{available: true, err: context.DeadlineExceeded}
	srv, recorder := newTestServer(t, det)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(t, "cam-1", jpegFrame(t, color.RGBA{120, 120, 120, 255})))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "detection failed")
	require.Equal(t, 0, recorder.Count())
}

func TestAnalyzeRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t, &stubDetector{available: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/analyze", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSessionsLimit(t *testing.T) {
	srv, recorder := newTestServer(t, &stubDetector{available: true})
	for i := 0; i < 5; i++ {
		require.NoError(t, recorder.Record(session.AnalysisResult{
			StudentID: "cam-1",
			Activity:  "Attentive/Listening",
		}))
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/sessions?limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	require.Equal(t, float64(2), payload["count"])
	require.Len(t, payload["sessions"], 2)
}

func TestStatsEndpoint(t *testing.T) {
	srv, recorder := newTestServer(t, &stubDetector{available: true})
	require.NoError(t, recorder.Record(session.AnalysisResult{
		StudentID:       "cam-1",
		Activity:        "Using Phone",
		IsUnusual:       true,
		ConfidenceScore: 0.95,
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	require.Equal(t, float64(1), payload["total_sessions"])
	require.Equal(t, float64(1), payload["unusual_count"])
	require.Equal(t, 0.95, payload["average_confidence"])
	require.Len(t, payload["recent_sessions"], 1)
}

func TestClearEndpoint(t *testing.T) {
	srv, recorder := newTestServer(t, &stubDetector{available: true})
	require.NoError(t, recorder.Record(session.AnalysisResult{StudentID: "cam-1", Activity: "Using Phone"}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/clear", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, 1, recorder.Count())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "All data cleared", payload["message"])
	require.Equal(t, 0, recorder.Count())
}

func TestDebugEndpoint(t *testing.T) {
	srv, recorder := newTestServer(t, &stubDetector{available: true})
	require.NoError(t, recorder.Record(session.AnalysisResult{StudentID: "cam-1", Activity: "Reading/Studying"}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/debug", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	require.Equal(t, "running", payload["status"])
	require.Equal(t, float64(1), payload["total_sessions"])
	require.Len(t, payload["recent_sessions"], 1)

	models := payload["models_loaded"].(map[string]any)
	require.Equal(t, true, models["object_detector"])
	require.Equal(t, true, models["pose_detector"])
}

func TestActiveStreamsAfterIngest(t *testing.T) {
	srv, _ := newTestServer(t, &stubDetector{available: true, result: &detector.Result{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, analyzeRequest(t, "cam-2", jpegFrame(t, color.RGBA{120, 120, 120, 255})))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/active_streams", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{"cam-2"}, decodeBody(t, rec)["streams"])
}

func TestStreamEndpointServesIngestedFrame(t *testing.T) {
	srv, _ := newTestServer(t, &stubDetector{available: true, result: &detector.Result{}})
	handler := srv.Handler()

	frame := jpegFrame(t, color.RGBA{120, 120, 120, 255})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, analyzeRequest(t, "cam-1", frame))
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/stream/cam-1", nil).WithContext(ctx)
	streamRec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(streamRec, req)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not stop after cancellation")
	}

	require.Equal(t, "multipart/x-mixed-replace; boundary=frame", streamRec.Header().Get("Content-Type"))
	require.True(t, bytes.Contains(streamRec.Body.Bytes(), frame))
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &stubDetector{available: true})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/analyze", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestIndexServesDashboard(t *testing.T) {
	srv, _ := newTestServer(t, &stubDetector{available: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
