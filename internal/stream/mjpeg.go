package stream

import (
	"net/http"
	"time"

	"github.com/smart-classroom/activity-monitor/internal/logger"
)

// ServeMJPEG streams the subject's live view as multipart JPEG parts at a
// fixed interval until the client disconnects. While the subject has no
// cached frame, a placeholder is emitted instead.
//
// The loop never terminates on its own: cancellation comes from the
// request context and from write errors once the connection closes.
func ServeMJPEG(w http.ResponseWriter, r *http.Request, cache *FrameCache, subjectID string, interval time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")

	placeholder, err := Placeholder(subjectID)
	if err != nil {
		http.Error(w, "Failed to render frame", http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		frame, ok := cache.Latest(subjectID)
		if !ok {
			frame = placeholder
		}

		if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
			logger.Debug("MJPEG", "Client disconnected during boundary write: %v", err)
			return
		}
		if _, err := w.Write(frame); err != nil {
			logger.Debug("MJPEG", "Client disconnected during frame write: %v", err)
			return
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			logger.Debug("MJPEG", "Client disconnected during delimiter write: %v", err)
			return
		}
		flusher.Flush()

		select {
		case <-ctx.Done():
			logger.Debug("MJPEG", "Stream for %s canceled", subjectID)
			return
		case <-ticker.C:
		}
	}
}
