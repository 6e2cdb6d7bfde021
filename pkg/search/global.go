package search

import (
	"strings"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// minGlobalQueryLength is the query length at which search escalates from
// the loaded page to the whole collection.
const minGlobalQueryLength = 2

// Lister is the slice of the file repository global search reads from.
type Lister interface {
	ListAll(workspaceID string) ([]*types.FileRecord, error)
}

// Service runs searches for a workspace. Page-local filtering stays a pure
// function; global search is the separate code path that bypasses the
// current page and queries the full unfiltered collection.
type Service struct {
	files Lister
	now   func() time.Time
}

// NewService creates a search service over the file repository. now may be
// nil, in which case the wall clock is used.
func NewService(files Lister, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{files: files, now: now}
}

// IsGlobal reports whether the criteria trigger a cross-page search:
// a query of at least two characters, or at least one selected tag.
func IsGlobal(c Criteria) bool {
	return len(strings.TrimSpace(c.Query)) >= minGlobalQueryLength || len(c.Tags) > 0
}

// Global searches the full non-deleted collection of a workspace, ignoring
// paging entirely.
func (s *Service) Global(workspaceID string, c Criteria) ([]*types.FileRecord, error) {
	all, err := s.files.ListAll(workspaceID)
	if err != nil {
		return nil, err
	}
	return Filter(all, c, s.now()), nil
}
