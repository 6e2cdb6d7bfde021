package repository

import (
	"database/sql"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// PreferenceRepository persists small per-workspace key/value settings,
// such as the last selected project.
type PreferenceRepository struct {
	db *sql.DB
}

// Set stores a preference value, replacing any previous value.
func (r *PreferenceRepository) Set(workspaceID, key, value string) error {
	query := `
	INSERT OR REPLACE INTO preferences (workspace_id, key, value, updated_at)
	VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, workspaceID, key, value, time.Now().UTC())
	if err != nil {
		return &types.PersistenceError{Op: "set preference", Err: err}
	}
	return nil
}

// Get returns a preference value, or "" when unset.
func (r *PreferenceRepository) Get(workspaceID, key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE workspace_id = ? AND key = ?", workspaceID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &types.PersistenceError{Op: "get preference", Err: err}
	}
	return value, nil
}
