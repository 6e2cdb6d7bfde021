package tags

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/types"
)

// ErrMergeRequired is returned by Rename when the target tag already exists
// on some file. The caller must confirm and retry as a merge instead of
// silently creating a duplicate tag spelling.
var ErrMergeRequired = errors.New("target tag already exists, merge required")

// FileStore is the slice of the file repository tag management works on.
type FileStore interface {
	ListAll(workspaceID string) ([]*types.FileRecord, error)
	ListByTag(workspaceID, tag string) ([]*types.FileRecord, error)
	SetTags(id string, tags []string) error
	Insert(f *types.FileRecord) error
	HardDelete(id string) error
}

// sentinelPrefix namespaces the storage paths of zero-byte sentinel
// records that hold a tag with no real files. Nothing is stored at these
// paths.
const sentinelPrefix = "tags/"

// Service implements tag management over the denormalized tags array on
// file records. Tag names are normalized (trim + lower-case) for comparison
// only; stored casing is preserved from the first write. Bulk operations
// issue one independent update per affected file: a failure partway leaves
// some files migrated and others not, surfaced as a single aggregate error
// with no rollback.
type Service struct {
	files  FileStore
	feed   *events.Feed
	logger *log.Logger
}

// NewService creates a tag management service.
func NewService(files FileStore, feed *events.Feed) *Service {
	return &Service{
		files:  files,
		feed:   feed,
		logger: log.New(os.Stdout, "[Tags] ", log.LstdFlags),
	}
}

// List returns every distinct tag in the workspace with its usage count.
// Casing follows the oldest record holding the tag.
func (s *Service) List(workspaceID string) ([]types.TagUsage, error) {
	all, err := s.files.ListAll(workspaceID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	casing := make(map[string]string)
	var order []string

	// ListAll returns newest first; walking it backwards makes the first
	// write win the stored casing.
	for i := len(all) - 1; i >= 0; i-- {
		for _, tag := range all[i].Tags {
			norm := types.NormalizeTag(tag)
			if norm == "" {
				continue
			}
			if _, seen := counts[norm]; !seen {
				casing[norm] = strings.TrimSpace(tag)
				order = append(order, norm)
			}
			counts[norm]++
		}
	}

	usages := make([]types.TagUsage, 0, len(order))
	for _, norm := range order {
		usages = append(usages, types.TagUsage{Tag: casing[norm], Count: counts[norm]})
	}
	return usages, nil
}

// Create registers a tag with no files by inserting a zero-byte sentinel
// record whose only content is the tag. Duplicate creation is guarded by
// normalized comparison against all currently known tags.
func (s *Service) Create(workspaceID, tag string) error {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return &types.ValidationError{Field: "tag", Reason: "tag name is empty"}
	}

	existing, err := s.List(workspaceID)
	if err != nil {
		return err
	}
	norm := types.NormalizeTag(trimmed)
	for _, u := range existing {
		if types.NormalizeTag(u.Tag) == norm {
			return &types.ValidationError{Field: "tag", Reason: fmt.Sprintf("tag %q already exists", u.Tag)}
		}
	}

	now := time.Now().UTC()
	sentinel := &types.FileRecord{
		ID:           uuid.NewString(),
		Name:         trimmed,
		OriginalName: trimmed,
		Size:         0,
		MimeType:     "application/octet-stream",
		Category:     types.CategoryOther,
		StoragePath:  sentinelPrefix + workspaceID + "/" + uuid.NewString(),
		Tags:         []string{trimmed},
		WorkspaceID:  workspaceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.files.Insert(sentinel); err != nil {
		return err
	}

	s.publish(workspaceID)
	return nil
}

// Rename changes a tag's spelling across every file holding it. If the
// normalized target already exists on any file, ErrMergeRequired is
// returned so the caller can confirm an explicit merge.
func (s *Service) Rename(workspaceID, oldTag, newTag string) error {
	trimmed := strings.TrimSpace(newTag)
	if trimmed == "" {
		return &types.ValidationError{Field: "tag", Reason: "tag name is empty"}
	}

	oldNorm := types.NormalizeTag(oldTag)
	newNorm := types.NormalizeTag(trimmed)

	if oldNorm != newNorm {
		existing, err := s.files.ListByTag(workspaceID, trimmed)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrMergeRequired
		}
	}

	return s.rewriteTag(workspaceID, oldTag, func(fileTags []string) []string {
		out := fileTags[:0]
		for _, t := range fileTags {
			if types.NormalizeTag(t) == oldNorm {
				continue
			}
			out = append(out, t)
		}
		return appendUnique(out, trimmed)
	})
}

// Merge folds every file holding the source tag onto the target tag: the
// source is removed, the target added if not already present. One update is
// issued per affected file; there is no transaction.
func (s *Service) Merge(workspaceID, sourceTag, targetTag string) error {
	trimmed := strings.TrimSpace(targetTag)
	if trimmed == "" {
		return &types.ValidationError{Field: "tag", Reason: "tag name is empty"}
	}

	sourceNorm := types.NormalizeTag(sourceTag)
	return s.rewriteTag(workspaceID, sourceTag, func(fileTags []string) []string {
		out := fileTags[:0]
		for _, t := range fileTags {
			if types.NormalizeTag(t) == sourceNorm {
				continue
			}
			out = append(out, t)
		}
		return appendUnique(out, trimmed)
	})
}

// Delete removes the tag from every file holding it. Sentinel records left
// with no tags are removed entirely.
func (s *Service) Delete(workspaceID, tag string) error {
	norm := types.NormalizeTag(tag)
	return s.rewriteTag(workspaceID, tag, func(fileTags []string) []string {
		out := fileTags[:0]
		for _, t := range fileTags {
			if types.NormalizeTag(t) == norm {
				continue
			}
			out = append(out, t)
		}
		return out
	})
}

// rewriteTag applies transform to the tag set of every file holding tag,
// one independent update per file. Partial failure is reported as one
// aggregate error; already-updated files are not rolled back.
func (s *Service) rewriteTag(workspaceID, tag string, transform func([]string) []string) error {
	affected, err := s.files.ListByTag(workspaceID, tag)
	if err != nil {
		return err
	}
	if len(affected) == 0 {
		return &types.ValidationError{Field: "tag", Reason: fmt.Sprintf("tag %q not found", tag)}
	}

	failures := 0
	for _, f := range affected {
		newTags := transform(append([]string(nil), f.Tags...))

		if len(newTags) == 0 && isSentinel(f) {
			if err := s.files.HardDelete(f.ID); err != nil {
				s.logger.Printf("failed to remove sentinel %s: %v", f.ID, err)
				failures++
			}
			continue
		}

		if err := s.files.SetTags(f.ID, newTags); err != nil {
			s.logger.Printf("failed to update tags on %s: %v", f.ID, err)
			failures++
		}
	}

	s.publish(workspaceID)

	if failures > 0 {
		return &types.PersistenceError{
			Op:  "bulk tag update",
			Err: fmt.Errorf("%d of %d file updates failed", failures, len(affected)),
		}
	}
	return nil
}

func (s *Service) publish(workspaceID string) {
	s.feed.Publish(events.Event{Type: events.EventTagsChanged, WorkspaceID: workspaceID})
}

// appendUnique adds tag unless an equivalent spelling is already present.
func appendUnique(tags []string, tag string) []string {
	norm := types.NormalizeTag(tag)
	for _, t := range tags {
		if types.NormalizeTag(t) == norm {
			return tags
		}
	}
	return append(tags, tag)
}

func isSentinel(f *types.FileRecord) bool {
	return f.Size == 0 && strings.HasPrefix(f.StoragePath, sentinelPrefix)
}
