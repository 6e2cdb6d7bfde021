package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// FolderRepository handles folder tree database operations. Each folder's
// path is the slash-joined chain of ancestor IDs ending in its own ID; the
// path makes descendant checks a prefix comparison.
type FolderRepository struct {
	db *sql.DB
}

// Insert saves a new folder under the given parent ("" for the project
// root) and derives its materialized path.
func (r *FolderRepository) Insert(f *types.Folder) error {
	path := f.ID
	if f.ParentID != "" {
		parent, err := r.GetByID(f.ParentID)
		if err != nil {
			return err
		}
		if parent.ProjectID != f.ProjectID {
			return &types.ValidationError{Field: "parent_id", Reason: "parent folder belongs to a different project"}
		}
		path = parent.Path + "/" + f.ID
	}
	f.Path = path

	query := `
	INSERT INTO folders (id, name, parent_id, project_id, path, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, f.ID, f.Name, nullString(f.ParentID), f.ProjectID, f.Path, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return &types.PersistenceError{Op: "insert folder", Err: err}
	}
	return nil
}

// GetByID retrieves a folder by ID.
func (r *FolderRepository) GetByID(id string) (*types.Folder, error) {
	query := `SELECT id, name, parent_id, project_id, path, created_at, updated_at
		FROM folders WHERE id = ?`

	var f types.Folder
	var parentID sql.NullString
	err := r.db.QueryRow(query, id).Scan(&f.ID, &f.Name, &parentID, &f.ProjectID, &f.Path, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &types.PersistenceError{Op: "get folder", Err: fmt.Errorf("folder not found: %s", id)}
		}
		return nil, &types.PersistenceError{Op: "get folder", Err: err}
	}
	f.ParentID = parentID.String
	return &f, nil
}

// ListByProject returns all folders of a project ordered by path, which
// yields parents before their children.
func (r *FolderRepository) ListByProject(projectID string) ([]*types.Folder, error) {
	query := `SELECT id, name, parent_id, project_id, path, created_at, updated_at
		FROM folders WHERE project_id = ? ORDER BY path`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list folders", Err: err}
	}
	defer rows.Close()

	var folders []*types.Folder
	for rows.Next() {
		var f types.Folder
		var parentID sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &parentID, &f.ProjectID, &f.Path, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, &types.PersistenceError{Op: "list folders", Err: err}
		}
		f.ParentID = parentID.String
		folders = append(folders, &f)
	}
	return folders, rows.Err()
}

// Rename updates a folder's display name.
func (r *FolderRepository) Rename(id, name string) error {
	result, err := r.db.Exec("UPDATE folders SET name = ?, updated_at = ? WHERE id = ?", name, time.Now().UTC(), id)
	if err != nil {
		return &types.PersistenceError{Op: "rename folder", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.PersistenceError{Op: "rename folder", Err: fmt.Errorf("folder not found: %s", id)}
	}
	return nil
}

// Move reparents a folder. Moving a folder under itself or one of its own
// descendants is rejected before any write is issued. Descendant paths are
// rewritten to the new prefix.
func (r *FolderRepository) Move(id, newParentID string) error {
	folder, err := r.GetByID(id)
	if err != nil {
		return err
	}

	newPath := folder.ID
	if newParentID != "" {
		if newParentID == id {
			return &types.ValidationError{Field: "parent_id", Reason: "folder cannot be its own parent"}
		}
		parent, err := r.GetByID(newParentID)
		if err != nil {
			return err
		}
		if parent.ProjectID != folder.ProjectID {
			return &types.ValidationError{Field: "parent_id", Reason: "parent folder belongs to a different project"}
		}
		if strings.HasPrefix(parent.Path+"/", folder.Path+"/") {
			return &types.ValidationError{Field: "parent_id", Reason: "cannot move a folder under its own descendant"}
		}
		newPath = parent.Path + "/" + folder.ID
	}

	tx, err := r.db.Begin()
	if err != nil {
		return &types.PersistenceError{Op: "move folder", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec("UPDATE folders SET parent_id = ?, path = ?, updated_at = ? WHERE id = ?",
		nullString(newParentID), newPath, now, id)
	if err != nil {
		return &types.PersistenceError{Op: "move folder", Err: err}
	}

	// Rewrite the subtree's materialized paths.
	oldPrefix := folder.Path + "/"
	newPrefix := newPath + "/"
	_, err = tx.Exec(`UPDATE folders SET path = ? || substr(path, ?), updated_at = ? WHERE path LIKE ? ESCAPE '\'`,
		newPrefix, len(oldPrefix)+1, now, likePrefix(oldPrefix))
	if err != nil {
		return &types.PersistenceError{Op: "move folder", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &types.PersistenceError{Op: "move folder", Err: err}
	}
	return nil
}

// Delete removes a folder and its entire subtree.
func (r *FolderRepository) Delete(id string) error {
	folder, err := r.GetByID(id)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`DELETE FROM folders WHERE id = ? OR path LIKE ? ESCAPE '\'`,
		id, likePrefix(folder.Path+"/"))
	if err != nil {
		return &types.PersistenceError{Op: "delete folder", Err: err}
	}
	return nil
}

// likePrefix escapes LIKE metacharacters so a path prefix matches literally.
func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}
