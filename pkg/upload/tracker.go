package upload

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// Tracker maintains the in-memory list of files in flight. Entries are
// shown to clients before the authoritative record exists and are removed
// once the corresponding upload succeeds or fails. Entries are never
// persisted.
type Tracker struct {
	mu      sync.Mutex
	entries []*types.OptimisticEntry
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin creates a placeholder entry at the head of the list and returns its
// tracking ID. It is synchronous and performs no I/O.
func (t *Tracker) Begin(name string, size int64, mimeType string) string {
	entry := &types.OptimisticEntry{
		TrackingID:   uuid.NewString(),
		Name:         name,
		OriginalName: name,
		Size:         size,
		MimeType:     mimeType,
		Category:     types.CategoryOf(mimeType),
		Progress:     0,
		Status:       types.UploadStatusUploading,
		Optimistic:   true,
		StartedAt:    time.Now().UTC(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append([]*types.OptimisticEntry{entry}, t.entries...)
	return entry.TrackingID
}

// Advance updates an entry's progress and status in place. Unknown tracking
// IDs are ignored; the entry may already have been resolved.
func (t *Tracker) Advance(trackingID string, progress int, status types.UploadStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.TrackingID == trackingID {
			if progress >= 0 {
				e.Progress = progress
			}
			if status != "" {
				e.Status = status
			}
			return
		}
	}
}

// Resolve removes every placeholder whose original name matches. Concurrent
// uploads of identically named files are not distinguished here; the
// pipeline itself resolves by tracking ID.
func (t *Tracker) Resolve(originalName string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.OriginalName != originalName {
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// ResolveID removes the single placeholder with the given tracking ID.
func (t *Tracker) ResolveID(trackingID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.TrackingID != trackingID {
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// Snapshot returns a copy of the current in-flight entries, newest first.
func (t *Tracker) Snapshot() []types.OptimisticEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make([]types.OptimisticEntry, len(t.entries))
	for i, e := range t.entries {
		snapshot[i] = *e
	}
	return snapshot
}
