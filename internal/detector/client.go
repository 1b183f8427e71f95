package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/smart-classroom/activity-monitor/internal/logger"
)

// COCO pose keypoint indices used by the adapter.
const (
	kpNose          = 0
	kpLeftShoulder  = 5
	kpRightShoulder = 6
	kpLeftWrist     = 9
	kpRightWrist    = 10

	// minKeypoints is the minimum pose keypoint count for the geometry
	// flags to be derivable.
	minKeypoints = 11
)

// Client calls the object/pose model sidecar over HTTP.
//
// Availability is decided once, at startup: if the sidecar does not answer
// the health probe, the client reports itself unavailable for the process
// lifetime and the server routes every request through the fallback
// classifier. There is no per-request retry.
type Client struct {
	baseURL   string
	http      *http.Client
	available atomic.Bool
}

// NewClient returns a client for the sidecar at baseURL. An empty baseURL
// yields a permanently unavailable client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Probe checks the sidecar health endpoint and fixes the availability of
// the client for the rest of the process lifetime.
func (c *Client) Probe(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("no detector URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("detector health probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector health probe: status %d", resp.StatusCode)
	}

	c.available.Store(true)
	logger.Info("Detector", "Model sidecar available at %s", c.baseURL)
	return nil
}

// Available reports whether the primary detector loaded successfully.
func (c *Client) Available() bool {
	return c.available.Load()
}

// Sidecar wire format.
type wireObject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type wireResponse struct {
	Objects   []wireObject `json:"objects"`
	Keypoints [][2]float64 `json:"keypoints"`
}

// Detect submits a JPEG frame to the sidecar and returns the
// confidence-filtered objects plus named pose keypoints, if a person pose
// with enough keypoints was found.
func (c *Client) Detect(ctx context.Context, jpegData []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(jpegData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned status %d", resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}

	result := &Result{}
	for _, obj := range wire.Objects {
		if obj.Confidence > minConfidence {
			result.Objects = append(result.Objects, Detection{
				Label:      obj.Label,
				Confidence: obj.Confidence,
			})
		}
	}

	if len(wire.Keypoints) >= minKeypoints {
		result.Keypoints = &Keypoints{
			Nose:          pointAt(wire.Keypoints, kpNose),
			LeftShoulder:  pointAt(wire.Keypoints, kpLeftShoulder),
			RightShoulder: pointAt(wire.Keypoints, kpRightShoulder),
			LeftWrist:     pointAt(wire.Keypoints, kpLeftWrist),
			RightWrist:    pointAt(wire.Keypoints, kpRightWrist),
		}
	}

	return result, nil
}

func pointAt(points [][2]float64, idx int) Point {
	return Point{X: points[idx][0], Y: points[idx][1]}
}
