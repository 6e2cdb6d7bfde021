package events

import (
	"sync"
	"time"
)

// EventType identifies what changed in a workspace.
type EventType string

const (
	EventFilesChanged    EventType = "files_changed"
	EventTagsChanged     EventType = "tags_changed"
	EventProjectsChanged EventType = "projects_changed"
	EventFoldersChanged  EventType = "folders_changed"
)

// Event is a best-effort change notification scoped to a workspace.
// Consumers refetch on receipt; events carry no entity payload and are not
// ordered against locally issued mutations.
type Event struct {
	Type        EventType `json:"type"`
	WorkspaceID string    `json:"workspace_id"`
	EntityID    string    `json:"entity_id,omitempty"`
	At          time.Time `json:"at"`
}

const subscriberBuffer = 16

// Feed is an in-process change-notification hub filtered by workspace.
type Feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	workspaceID string
	ch          chan Event
}

// NewFeed creates an empty change feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*subscriber)}
}

// Subscribe registers a listener for one workspace's events. The returned
// cancel func must be called to release the subscription.
func (f *Feed) Subscribe(workspaceID string) (<-chan Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	sub := &subscriber{
		workspaceID: workspaceID,
		ch:          make(chan Event, subscriberBuffer),
	}
	f.subs[id] = sub

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub.ch)
		}
	}

	return sub.ch, cancel
}

// Publish delivers an event to every subscriber of its workspace. Delivery
// is non-blocking; a subscriber with a full buffer drops the event and is
// expected to refetch on its next received one.
func (f *Feed) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		if sub.workspaceID != event.WorkspaceID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}
