package session

import (
	"fmt"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// Role of the authenticated user within the workspace.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Session is the explicit authenticated-session context passed into
// services. It replaces implicit shared workspace state: every operation
// that needs a workspace receives one of these by value.
type Session struct {
	WorkspaceID string
	UserID      string
	Role        Role
}

// Validate confirms the session carries an active workspace.
func (s Session) Validate() error {
	if s.WorkspaceID == "" {
		return &types.ConfigurationError{Reason: "no active workspace"}
	}
	return nil
}

// PreferenceStore persists small per-workspace settings.
type PreferenceStore interface {
	Set(workspaceID, key, value string) error
	Get(workspaceID, key string) (string, error)
}

// Preferences exposes the per-workspace settings that survive across
// sessions, such as the last selected project.
type Preferences struct {
	store PreferenceStore
}

// NewPreferences wraps a preference store.
func NewPreferences(store PreferenceStore) *Preferences {
	return &Preferences{store: store}
}

// currentProjectKey mirrors the per-workspace key the web client used to
// persist the last selected project.
func currentProjectKey(workspaceID string) string {
	return fmt.Sprintf("currentProjectId_%s", workspaceID)
}

// CurrentProject returns the last selected project ID, or "" when unset.
func (p *Preferences) CurrentProject(s Session) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return p.store.Get(s.WorkspaceID, currentProjectKey(s.WorkspaceID))
}

// SetCurrentProject persists the last selected project ID.
func (p *Preferences) SetCurrentProject(s Session, projectID string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return p.store.Set(s.WorkspaceID, currentProjectKey(s.WorkspaceID), projectID)
}
