package view

import (
	"sync"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// ActiveView is the single selected top-level panel. Exactly one view is
// active at a time; the enum makes invalid combinations unrepresentable.
type ActiveView string

const (
	ViewFiles    ActiveView = "files"
	ViewProjects ActiveView = "projects"
	ViewTags     ActiveView = "tags"
	ViewUploads  ActiveView = "uploads"
	ViewAdmin    ActiveView = "admin"
)

// Valid reports whether v names a known panel.
func (v ActiveView) Valid() bool {
	switch v {
	case ViewFiles, ViewProjects, ViewTags, ViewUploads, ViewAdmin:
		return true
	}
	return false
}

// State is one workspace session's UI state: the active panel plus the set
// of currently open transient modals/sheets.
type State struct {
	Active ActiveView      `json:"active"`
	Modals map[string]bool `json:"modals,omitempty"`
}

// Controller coordinates mutually exclusive panel selection and modal
// visibility per workspace. Selecting a panel implicitly deselects the
// previous one.
type Controller struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewController creates a controller with no tracked workspaces.
func NewController() *Controller {
	return &Controller{states: make(map[string]*State)}
}

// Get returns the current state of a workspace, defaulting to the files
// panel with no open modals.
func (c *Controller) Get(workspaceID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(workspaceID)
	out := State{Active: st.Active, Modals: make(map[string]bool, len(st.Modals))}
	for name, open := range st.Modals {
		if open {
			out.Modals[name] = true
		}
	}
	return out
}

// Select switches the active panel.
func (c *Controller) Select(workspaceID string, v ActiveView) error {
	if !v.Valid() {
		return &types.ValidationError{Field: "view", Reason: "unknown view: " + string(v)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state(workspaceID).Active = v
	return nil
}

// OpenModal marks a transient modal/sheet visible.
func (c *Controller) OpenModal(workspaceID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state(workspaceID).Modals[name] = true
}

// CloseModal hides a modal. Closing an unopened modal is a no-op.
func (c *Controller) CloseModal(workspaceID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state(workspaceID).Modals, name)
}

func (c *Controller) state(workspaceID string) *State {
	st, ok := c.states[workspaceID]
	if !ok {
		st = &State{Active: ViewFiles, Modals: make(map[string]bool)}
		c.states[workspaceID] = st
	}
	return st
}
