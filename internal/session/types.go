package session

import "math"

// AnalysisResult is one immutable analysis record. The JSON field names
// are part of the wire contract with the camera firmware and dashboard.
//
// The auxiliary fields depend on the path taken: primary detection fills
// head_down/hand_raised, the fallback path fills face_count/edge_density.
// Pointers keep the unused pair off the wire entirely.
type AnalysisResult struct {
	StudentID       string   `json:"student_id"`
	Activity        string   `json:"activity"`
	ObjectsDetected []string `json:"objects_detected"`
	IsUnusual       bool     `json:"is_unusual"`
	ConfidenceScore float64  `json:"confidence_score"`
	BrightnessLevel float64  `json:"brightness_level"`
	HeadDown        *bool    `json:"head_down,omitempty"`
	HandRaised      *bool    `json:"hand_raised,omitempty"`
	FaceCount       *int     `json:"face_count,omitempty"`
	EdgeDensity     *float64 `json:"edge_density,omitempty"`
	Timestamp       string   `json:"timestamp"`
	ImageDimensions string   `json:"image_dimensions"`
}

// Statistics is the process-lifetime aggregate. Counts cover every record
// ever folded in, not just the retained session window.
type Statistics struct {
	TotalSessions int            `json:"total_sessions"`
	UnusualCount  int            `json:"unusual_count"`
	Activities    map[string]int `json:"activities"`
	LastUpdated   *string        `json:"last_updated"`
}

// NewStatistics returns a zeroed Statistics object.
func NewStatistics() Statistics {
	return Statistics{Activities: map[string]int{}}
}

// StatsView is the /api/stats payload: raw statistics plus views derived
// from the retained session log. The derived fields are recomputed on
// every call and omitted while the log is empty.
type StatsView struct {
	Statistics
	AverageConfidence    *float64         `json:"average_confidence,omitempty"`
	ActivityDistribution map[string]int   `json:"activity_distribution,omitempty"`
	RecentSessions       []AnalysisResult `json:"recent_sessions,omitempty"`
}

// Round2 rounds to two decimals, matching the reference wire format.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
