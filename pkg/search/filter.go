package search

import (
	"strings"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// CategoryFilter narrows a listing to one derived category or state. It is
// mutually exclusive with CategoryAll; exactly one value is active.
type CategoryFilter string

const (
	CategoryAll       CategoryFilter = "all"
	CategoryFavorites CategoryFilter = "favorites"
	CategoryRecent    CategoryFilter = "recent"
	CategoryImages    CategoryFilter = "images"
	CategoryVideos    CategoryFilter = "videos"
	CategoryAudio     CategoryFilter = "audio"
	CategoryDocuments CategoryFilter = "documents"
	CategoryArchives  CategoryFilter = "archives"
)

// recentWindow matches the "recent" view predicate: modified within the
// last 7 days of the evaluation time.
const recentWindow = 7 * 24 * time.Hour

// Criteria is the client-side filter state applied on top of a loaded page.
type Criteria struct {
	Query    string
	Tags     []string
	Category CategoryFilter
}

// Empty reports whether no filter is active.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Query) == "" && len(c.Tags) == 0 &&
		(c.Category == "" || c.Category == CategoryAll)
}

// Filter applies free-text search, tag intersection, and the category
// filter to items, composed by logical AND. It is pure: no I/O, evaluation
// time passed in as now. Paging is unaffected; the caller filters whatever
// page it has loaded.
func Filter(items []*types.FileRecord, c Criteria, now time.Time) []*types.FileRecord {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	var out []*types.FileRecord
	for _, f := range items {
		if query != "" && !matchesQuery(f, query) {
			continue
		}
		if !hasAllTags(f, c.Tags) {
			continue
		}
		if !matchesCategory(f, c.Category, now) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// matchesQuery reports whether the query is a case-insensitive substring of
// the display name, the original name, or any tag.
func matchesQuery(f *types.FileRecord, query string) bool {
	if strings.Contains(strings.ToLower(f.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(f.OriginalName), query) {
		return true
	}
	for _, tag := range f.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// hasAllTags requires every selected tag to be present on the file
// (intersection semantics, case-insensitive).
func hasAllTags(f *types.FileRecord, tags []string) bool {
	for _, tag := range tags {
		if !f.HasTag(tag) {
			return false
		}
	}
	return true
}

func matchesCategory(f *types.FileRecord, category CategoryFilter, now time.Time) bool {
	switch category {
	case "", CategoryAll:
		return true
	case CategoryFavorites:
		return f.Favorite
	case CategoryRecent:
		return now.Sub(f.UpdatedAt) < recentWindow
	case CategoryImages:
		return f.Category == types.CategoryImage
	case CategoryVideos:
		return f.Category == types.CategoryVideo
	case CategoryAudio:
		return f.Category == types.CategoryAudio
	case CategoryDocuments:
		return f.Category == types.CategoryDocument
	case CategoryArchives:
		return f.Category == types.CategoryArchive
	default:
		return true
	}
}
