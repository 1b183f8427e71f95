package session

import (
	"errors"
	"sync"
	"time"
)

const (
	// maxSessions caps the retained session log. Statistics keep counting
	// past the cap; only the log is truncated.
	maxSessions = 1000

	confidenceWindow   = 20
	distributionWindow = 100
	recentWindow       = 10
)

// Recorder appends analysis records to the bounded session log and folds
// them into the running statistics, persisting both after every change.
// All operations are serialized behind one lock so concurrent requests
// cannot lose updates in the read-modify-write persistence sequence.
type Recorder struct {
	mu       sync.Mutex
	store    *Store
	sessions []AnalysisResult // newest first
	stats    Statistics
}

// NewRecorder loads any persisted state and returns a recorder over it.
func NewRecorder(store *Store) (*Recorder, error) {
	sessions, err := store.LoadSessions()
	if err != nil {
		return nil, err
	}
	stats, err := store.LoadStatistics()
	if err != nil {
		return nil, err
	}
	return &Recorder{
		store:    store,
		sessions: sessions,
		stats:    stats,
	}, nil
}

// Record prepends the result to the session log, evicting the oldest
// entry past the cap, then folds it into the statistics. Both documents
// are persisted; a failed write is reported but does not roll back the
// in-memory state.
func (r *Recorder) Record(result AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append([]AnalysisResult{result}, r.sessions...)
	if len(r.sessions) > maxSessions {
		r.sessions = r.sessions[:maxSessions]
	}

	r.stats.TotalSessions++
	r.stats.Activities[result.Activity]++
	if result.IsUnusual {
		r.stats.UnusualCount++
	}
	now := time.Now().Format(time.RFC3339)
	r.stats.LastUpdated = &now

	return errors.Join(
		r.store.SaveSessions(r.sessions),
		r.store.SaveStatistics(r.stats),
	)
}

// Reset discards the session log and statistics entirely, in memory and
// on disk.
func (r *Recorder) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = nil
	r.stats = NewStatistics()
	return r.store.Clear()
}

// List returns up to limit of the most recent records, newest first.
func (r *Recorder) List(limit int) []AnalysisResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit < 0 || limit > len(r.sessions) {
		limit = len(r.sessions)
	}
	out := make([]AnalysisResult, limit)
	copy(out, r.sessions[:limit])
	return out
}

// Count returns the number of retained records.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Statistics returns a copy of the raw running statistics.
func (r *Recorder) Statistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statsCopyLocked()
}

// Stats returns the running statistics plus views derived from the
// retained log: average confidence over the most recent records, the
// recent activity distribution, and a copy of the newest records. The
// derived views are recomputed on every call.
func (r *Recorder) Stats() StatsView {
	r.mu.Lock()
	defer r.mu.Unlock()

	view := StatsView{Statistics: r.statsCopyLocked()}
	if len(r.sessions) == 0 {
		return view
	}

	recent := r.sessions[:min(confidenceWindow, len(r.sessions))]
	var sum float64
	for _, s := range recent {
		sum += s.ConfidenceScore
	}
	avg := Round2(sum / float64(len(recent)))
	view.AverageConfidence = &avg

	dist := map[string]int{}
	for _, s := range r.sessions[:min(distributionWindow, len(r.sessions))] {
		dist[s.Activity]++
	}
	view.ActivityDistribution = dist

	n := min(recentWindow, len(r.sessions))
	view.RecentSessions = make([]AnalysisResult, n)
	copy(view.RecentSessions, r.sessions[:n])

	return view
}

func (r *Recorder) statsCopyLocked() Statistics {
	stats := Statistics{
		TotalSessions: r.stats.TotalSessions,
		UnusualCount:  r.stats.UnusualCount,
		Activities:    make(map[string]int, len(r.stats.Activities)),
		LastUpdated:   r.stats.LastUpdated,
	}
	for k, v := range r.stats.Activities {
		stats.Activities[k] = v
	}
	return stats
}
