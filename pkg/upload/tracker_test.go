package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdeck/assetdeck/pkg/types"
)

func TestTrackerBeginInsertsAtHead(t *testing.T) {
	tracker := NewTracker()

	tracker.Begin("first.jpg", 100, "image/jpeg")
	tracker.Begin("second.jpg", 200, "video/mp4")

	entries := tracker.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, "second.jpg", entries[0].OriginalName)
	assert.Equal(t, types.CategoryVideo, entries[0].Category)
	assert.Equal(t, "first.jpg", entries[1].OriginalName)
	assert.Equal(t, types.UploadStatusUploading, entries[0].Status)
	assert.True(t, entries[0].Optimistic)
}

func TestTrackerAdvance(t *testing.T) {
	tracker := NewTracker()
	id := tracker.Begin("a.jpg", 10, "image/jpeg")

	tracker.Advance(id, 40, types.UploadStatusUploading)
	tracker.Advance(id, 80, types.UploadStatusProcessing)
	tracker.Advance("unknown-id", 99, types.UploadStatusError)

	entries := tracker.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, 80, entries[0].Progress)
	assert.Equal(t, types.UploadStatusProcessing, entries[0].Status)
}

func TestTrackerResolveRemovesAllMatchingNames(t *testing.T) {
	tracker := NewTracker()

	id := tracker.Begin("dup.jpg", 10, "image/jpeg")
	tracker.Begin("dup.jpg", 20, "image/jpeg")
	tracker.Begin("keep.jpg", 30, "image/jpeg")

	tracker.Advance(id, 50, types.UploadStatusProcessing)
	tracker.Resolve("dup.jpg")

	entries := tracker.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.jpg", entries[0].OriginalName)
}

func TestTrackerBeginThenResolveLeavesNothing(t *testing.T) {
	tracker := NewTracker()

	id := tracker.Begin("x.bin", 10, "application/octet-stream")
	for i := 0; i <= 100; i += 10 {
		tracker.Advance(id, i, types.UploadStatusUploading)
	}
	tracker.Resolve("x.bin")

	assert.Empty(t, tracker.Snapshot())
}

func TestTrackerResolveID(t *testing.T) {
	tracker := NewTracker()

	a := tracker.Begin("same.jpg", 10, "image/jpeg")
	b := tracker.Begin("same.jpg", 20, "image/jpeg")

	tracker.ResolveID(a)

	entries := tracker.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, b, entries[0].TrackingID)
}
