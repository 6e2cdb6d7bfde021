package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *sql.DB
}

// Insert saves a new project.
func (r *ProjectRepository) Insert(p *types.Project) error {
	query := `
	INSERT INTO projects (id, name, color, description, workspace_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, p.ID, p.Name, p.Color, p.Description, p.WorkspaceID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return &types.PersistenceError{Op: "insert project", Err: err}
	}
	return nil
}

// GetByID retrieves a project by ID.
func (r *ProjectRepository) GetByID(id string) (*types.Project, error) {
	query := `SELECT id, name, color, description, workspace_id, created_at, updated_at
		FROM projects WHERE id = ?`

	var p types.Project
	err := r.db.QueryRow(query, id).Scan(&p.ID, &p.Name, &p.Color, &p.Description, &p.WorkspaceID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &types.PersistenceError{Op: "get project", Err: fmt.Errorf("project not found: %s", id)}
		}
		return nil, &types.PersistenceError{Op: "get project", Err: err}
	}
	return &p, nil
}

// List returns all projects in a workspace ordered by name.
func (r *ProjectRepository) List(workspaceID string) ([]*types.Project, error) {
	query := `SELECT id, name, color, description, workspace_id, created_at, updated_at
		FROM projects WHERE workspace_id = ? ORDER BY name`

	rows, err := r.db.Query(query, workspaceID)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list projects", Err: err}
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		var p types.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Description, &p.WorkspaceID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, &types.PersistenceError{Op: "list projects", Err: err}
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// Update modifies a project's name, color, and description.
func (r *ProjectRepository) Update(p *types.Project) error {
	query := `UPDATE projects SET name = ?, color = ?, description = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Exec(query, p.Name, p.Color, p.Description, time.Now().UTC(), p.ID)
	if err != nil {
		return &types.PersistenceError{Op: "update project", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.PersistenceError{Op: "update project", Err: fmt.Errorf("project not found: %s", p.ID)}
	}
	return nil
}

// Delete removes a project. Files referencing it keep their rows; the
// caller decides whether to clear their project assignment first.
func (r *ProjectRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return &types.PersistenceError{Op: "delete project", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.PersistenceError{Op: "delete project", Err: fmt.Errorf("project not found: %s", id)}
	}
	return nil
}
