package upload

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/pkg/autotag"
	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/storage"
	"github.com/assetdeck/assetdeck/pkg/thumbnail"
	"github.com/assetdeck/assetdeck/pkg/types"
)

// FileWriter is the slice of the file repository the pipeline writes to.
type FileWriter interface {
	Insert(f *types.FileRecord) error
	HardDelete(id string) error
}

// ThumbGenerator derives a stored thumbnail for an upload.
type ThumbGenerator interface {
	Generate(ctx context.Context, in thumbnail.Input) (*thumbnail.Result, error)
}

// Notifier dispatches upload notifications to the auto-tagging webhook.
type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, payload autotag.Payload)
}

// Request describes one file to upload.
type Request struct {
	WorkspaceID  string
	ProjectID    string
	FolderID     string
	OriginalName string
	MimeType     string
	Data         []byte
	AutoTagging  bool
}

// webhookTimeout bounds the fire-and-forget auto-tagging dispatch, which
// outlives the originating request context.
const webhookTimeout = 30 * time.Second

// Pipeline orchestrates an upload: store raw bytes, derive the public URL,
// generate a thumbnail, persist the metadata record, notify the
// auto-tagging webhook, and reconcile the optimistic tracker.
type Pipeline struct {
	store   storage.ObjectStore
	files   FileWriter
	thumbs  ThumbGenerator
	tracker *Tracker
	webhook Notifier
	feed    *events.Feed
	logger  *log.Logger
}

// NewPipeline wires an upload pipeline. webhook may be nil when auto-tagging
// is not configured.
func NewPipeline(store storage.ObjectStore, files FileWriter, thumbs ThumbGenerator, tracker *Tracker, webhook Notifier, feed *events.Feed) *Pipeline {
	return &Pipeline{
		store:   store,
		files:   files,
		thumbs:  thumbs,
		tracker: tracker,
		webhook: webhook,
		feed:    feed,
		logger:  log.New(os.Stdout, "[Upload] ", log.LstdFlags),
	}
}

// Upload runs the full pipeline for one file. The optimistic placeholder is
// created synchronously before any I/O and removed by tracking ID whether
// the pipeline succeeds or fails. Thumbnail failure degrades to no
// thumbnail; webhook failure never affects the result.
func (p *Pipeline) Upload(ctx context.Context, req Request) (*types.FileRecord, error) {
	trackingID := p.tracker.Begin(req.OriginalName, int64(len(req.Data)), req.MimeType)
	defer p.tracker.ResolveID(trackingID)

	record, err := p.run(ctx, trackingID, req)
	if err != nil {
		p.tracker.Advance(trackingID, -1, types.UploadStatusError)
		return nil, err
	}

	p.tracker.Advance(trackingID, 100, types.UploadStatusComplete)
	return record, nil
}

func (p *Pipeline) run(ctx context.Context, trackingID string, req Request) (*types.FileRecord, error) {
	if req.WorkspaceID == "" {
		return nil, &types.ConfigurationError{Reason: "no active workspace"}
	}

	fileID := uuid.NewString()
	storagePath := synthesizePath(req)

	if err := p.store.Store(ctx, storagePath, bytes.NewReader(req.Data)); err != nil {
		return nil, err
	}
	p.tracker.Advance(trackingID, 60, types.UploadStatusUploading)

	url := p.store.URL(storagePath)

	p.tracker.Advance(trackingID, 75, types.UploadStatusProcessing)
	var thumbnailURL string
	thumb, err := p.thumbs.Generate(ctx, thumbnail.Input{
		WorkspaceID: req.WorkspaceID,
		FileID:      fileID,
		MimeType:    req.MimeType,
		Data:        req.Data,
	})
	if err != nil {
		p.logger.Printf("thumbnail generation failed for %s: %v", req.OriginalName, err)
	} else if thumb != nil {
		thumbnailURL = thumb.URL
	}

	now := time.Now().UTC()
	record := &types.FileRecord{
		ID:           fileID,
		Name:         req.OriginalName,
		OriginalName: req.OriginalName,
		Size:         int64(len(req.Data)),
		MimeType:     req.MimeType,
		Category:     types.CategoryOf(req.MimeType),
		StoragePath:  storagePath,
		URL:          url,
		ThumbnailURL: thumbnailURL,
		Tags:         []string{},
		WorkspaceID:  req.WorkspaceID,
		ProjectID:    req.ProjectID,
		FolderID:     req.FolderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.files.Insert(record); err != nil {
		// Best-effort cleanup of the orphaned bytes.
		if delErr := p.store.Delete(ctx, storagePath); delErr != nil {
			p.logger.Printf("failed to clean up %s after insert failure: %v", storagePath, delErr)
		}
		return nil, err
	}

	if req.AutoTagging && p.webhook != nil && p.webhook.Enabled() {
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
			defer cancel()
			p.webhook.Notify(notifyCtx, autotag.Payload{
				FileID:       record.ID,
				FileName:     record.Name,
				OriginalName: record.OriginalName,
				FileType:     record.MimeType,
				FileCategory: record.Category,
				FileSize:     record.Size,
				FileURL:      record.URL,
				ThumbnailURL: record.ThumbnailURL,
				FilePath:     record.StoragePath,
				WorkspaceID:  record.WorkspaceID,
				ProjectID:    record.ProjectID,
				FolderID:     record.FolderID,
				Timestamp:    time.Now().UTC(),
				Context: autotag.PayloadContext{
					Workspace:    record.WorkspaceID,
					UploadSource: "web",
				},
			})
		}()
	}

	p.feed.Publish(events.Event{
		Type:        events.EventFilesChanged,
		WorkspaceID: record.WorkspaceID,
		EntityID:    record.ID,
	})

	p.logger.Printf("uploaded %s (%d bytes) as %s", record.OriginalName, record.Size, record.ID)
	return record, nil
}

// UploadAll runs independent pipelines in parallel, one per request.
// It reports overall success only if every upload succeeded; completed
// uploads are not rolled back when others fail.
func (p *Pipeline) UploadAll(ctx context.Context, reqs []Request) ([]*types.FileRecord, bool) {
	records := make([]*types.FileRecord, len(reqs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := true

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			record, err := p.Upload(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Printf("upload failed for %s: %v", req.OriginalName, err)
				ok = false
				return
			}
			records[i] = record
		}(i, req)
	}
	wg.Wait()

	completed := records[:0]
	for _, r := range records {
		if r != nil {
			completed = append(completed, r)
		}
	}
	return completed, ok
}

// synthesizePath builds a collision-resistant storage path namespaced by
// workspace, then optional project and folder. The timestamp plus random
// suffix makes collisions effectively impossible; the store's no-overwrite
// check backs that up.
func synthesizePath(req Request) string {
	segments := []string{req.WorkspaceID}
	if req.ProjectID != "" {
		segments = append(segments, req.ProjectID)
		if req.FolderID != "" {
			segments = append(segments, req.FolderID)
		}
	}

	suffix := strings.Split(uuid.NewString(), "-")[0]
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, path.Ext(req.OriginalName))
	segments = append(segments, name)

	return strings.Join(segments, "/")
}
