package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	sessionsFile = "sessions.json"
	statsFile    = "statistics.json"
)

// Store persists the session log and statistics as two independent JSON
// documents, each fully rewritten on every mutation. There is no
// multi-document transaction: a crash between the two writes can leave
// them briefly out of step, which the recorder tolerates.
type Store struct {
	sessionsPath string
	statsPath    string
}

// NewStore creates the data directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{
		sessionsPath: filepath.Join(dir, sessionsFile),
		statsPath:    filepath.Join(dir, statsFile),
	}, nil
}

// LoadSessions reads the persisted session log. A missing file is an
// empty log.
func (s *Store) LoadSessions() ([]AnalysisResult, error) {
	data, err := os.ReadFile(s.sessionsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}

	var sessions []AnalysisResult
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions: %w", err)
	}
	return sessions, nil
}

// SaveSessions rewrites the session log document.
func (s *Store) SaveSessions(sessions []AnalysisResult) error {
	return s.writeJSON(s.sessionsPath, sessions)
}

// LoadStatistics reads the persisted statistics. A missing file yields
// zeroed statistics.
func (s *Store) LoadStatistics() (Statistics, error) {
	data, err := os.ReadFile(s.statsPath)
	if errors.Is(err, os.ErrNotExist) {
		return NewStatistics(), nil
	}
	if err != nil {
		return NewStatistics(), fmt.Errorf("read statistics: %w", err)
	}

	stats := NewStatistics()
	if err := json.Unmarshal(data, &stats); err != nil {
		return NewStatistics(), fmt.Errorf("parse statistics: %w", err)
	}
	if stats.Activities == nil {
		stats.Activities = map[string]int{}
	}
	return stats, nil
}

// SaveStatistics rewrites the statistics document.
func (s *Store) SaveStatistics(stats Statistics) error {
	return s.writeJSON(s.statsPath, stats)
}

// Clear removes both persisted documents.
func (s *Store) Clear() error {
	var errs []error
	for _, path := range []string{s.sessionsPath, s.statsPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
