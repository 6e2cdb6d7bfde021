package query

import (
	"fmt"
	"sync"
	"time"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/types"
)

// Pager is the slice of the file repository the loader reads from.
type Pager interface {
	ListPage(workspaceID string, view types.View, page, perPage int, sortBy string, dir types.SortDirection, now time.Time) ([]*types.FileRecord, int, error)
}

// DefaultPerPage is the page size used when the caller does not specify one.
const DefaultPerPage = 50

// Loader fetches pages of file metadata for the active view with
// server-side sorting, caching each page until a change event invalidates
// the workspace. Errors are surfaced as-is for a user-triggered retry; the
// loader never retries on its own.
type Loader struct {
	files   Pager
	perPage int
	now     func() time.Time
	stats   CacheStats

	mu    sync.Mutex
	cache map[string]*types.Page
}

// CacheStats receives cache hit/miss signals. Nil disables reporting.
type CacheStats interface {
	RecordCache(hit bool)
}

// SetStats attaches a cache hit/miss reporter. Call before serving.
func (l *Loader) SetStats(s CacheStats) {
	l.stats = s
}

// NewLoader creates a page loader over the file repository.
func NewLoader(files Pager, perPage int) *Loader {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &Loader{
		files:   files,
		perPage: perPage,
		now:     time.Now,
		cache:   make(map[string]*types.Page),
	}
}

// Load returns one page for the view. A cached page is returned until the
// workspace is invalidated.
func (l *Loader) Load(workspaceID string, view types.View, page int, sortBy string, dir types.SortDirection) (*types.Page, error) {
	if page < 1 {
		page = 1
	}

	key := cacheKey(workspaceID, view, page, sortBy, dir)

	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		if l.stats != nil {
			l.stats.RecordCache(true)
		}
		return cached, nil
	}
	l.mu.Unlock()
	if l.stats != nil {
		l.stats.RecordCache(false)
	}

	items, total, err := l.files.ListPage(workspaceID, view, page, l.perPage, sortBy, dir, l.now())
	if err != nil {
		return nil, err
	}

	result := &types.Page{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PerPage:    l.perPage,
		HasNext:    page*l.perPage < total,
		HasPrev:    page > 1,
	}

	l.mu.Lock()
	l.cache[key] = result
	l.mu.Unlock()

	return result, nil
}

// Invalidate drops every cached page of a workspace. The next Load refetches
// and supersedes any optimistic state.
func (l *Loader) Invalidate(workspaceID string) {
	prefix := workspaceID + "|"

	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(l.cache, key)
		}
	}
}

// WatchFeed invalidates the workspace's cached pages whenever its change
// feed signals. The returned stop func ends the watch.
func (l *Loader) WatchFeed(feed *events.Feed, workspaceID string) func() {
	ch, cancel := feed.Subscribe(workspaceID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ch {
			l.Invalidate(workspaceID)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func cacheKey(workspaceID string, view types.View, page int, sortBy string, dir types.SortDirection) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", workspaceID, view, page, sortBy, dir)
}
