// Package stream holds the live view plumbing: the per-subject frame
// cache written by the ingest path and the MJPEG emitter read by the
// streaming path.
package stream

import (
	"sort"
	"sync"
)

// FrameCache keeps the most recent JPEG frame per subject. One slot per
// subject: every new frame unconditionally replaces the previous one.
// The cache is process-memory only and vanishes on restart.
//
// A single lock guards the map for both writers (ingest) and readers
// (streaming); it is held only for the copy/replace, never across decode
// or inference.
type FrameCache struct {
	mu     sync.Mutex
	frames map[string][]byte
}

// NewFrameCache returns an empty cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{frames: make(map[string][]byte)}
}

// Update replaces the cached frame for the subject.
func (c *FrameCache) Update(subjectID string, jpegData []byte) {
	frame := make([]byte, len(jpegData))
	copy(frame, jpegData)

	c.mu.Lock()
	c.frames[subjectID] = frame
	c.mu.Unlock()
}

// Latest returns the most recent frame for the subject, if any. The
// returned bytes are never mutated after Update, so callers may use them
// without copying.
func (c *FrameCache) Latest(subjectID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame, ok := c.frames[subjectID]
	return frame, ok
}

// Subjects returns the subject IDs with a cached frame, sorted.
func (c *FrameCache) Subjects() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.frames))
	for id := range c.frames {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of subjects with a cached frame.
func (c *FrameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}
