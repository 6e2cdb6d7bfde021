package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// recentWindow is the lookback used by the "recent" view predicate.
const recentWindow = 7 * 24 * time.Hour

// FileRepository handles file metadata database operations
type FileRepository struct {
	db *sql.DB
}

const fileColumns = `id, name, original_name, size, mime_type, category,
	storage_path, url, thumbnail_url, favorite, tags, workspace_id,
	project_id, folder_id, deleted_at, created_at, updated_at`

// Insert saves a new file record.
func (r *FileRepository) Insert(f *types.FileRecord) error {
	tagsJSON, _ := json.Marshal(f.Tags)

	query := `
	INSERT INTO files (` + fileColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		f.ID,
		f.Name,
		f.OriginalName,
		f.Size,
		f.MimeType,
		string(f.Category),
		f.StoragePath,
		f.URL,
		f.ThumbnailURL,
		f.Favorite,
		string(tagsJSON),
		f.WorkspaceID,
		nullString(f.ProjectID),
		nullString(f.FolderID),
		f.DeletedAt,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		return &types.PersistenceError{Op: "insert file", Err: err}
	}
	return nil
}

// GetByID retrieves a file record by ID, including soft-deleted records.
func (r *FileRepository) GetByID(id string) (*types.FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`
	f, err := scanFile(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &types.PersistenceError{Op: "get file", Err: fmt.Errorf("file not found: %s", id)}
		}
		return nil, &types.PersistenceError{Op: "get file", Err: err}
	}
	return f, nil
}

// Rename updates the display name.
func (r *FileRepository) Rename(id, name string) error {
	return r.update(id, "UPDATE files SET name = ?, updated_at = ? WHERE id = ?", name, time.Now().UTC(), id)
}

// SetFavorite toggles the favorite flag.
func (r *FileRepository) SetFavorite(id string, favorite bool) error {
	return r.update(id, "UPDATE files SET favorite = ?, updated_at = ? WHERE id = ?", favorite, time.Now().UTC(), id)
}

// SetTags replaces the tag set of a file.
func (r *FileRepository) SetTags(id string, tags []string) error {
	tagsJSON, _ := json.Marshal(tags)
	return r.update(id, "UPDATE files SET tags = ?, updated_at = ? WHERE id = ?", string(tagsJSON), time.Now().UTC(), id)
}

// SetThumbnailURL records a thumbnail generated after the initial insert.
func (r *FileRepository) SetThumbnailURL(id, url string) error {
	return r.update(id, "UPDATE files SET thumbnail_url = ?, updated_at = ? WHERE id = ?", url, time.Now().UTC(), id)
}

// Move reassigns a file to a project/folder. Empty strings clear the
// assignment.
func (r *FileRepository) Move(id, projectID, folderID string) error {
	return r.update(id, "UPDATE files SET project_id = ?, folder_id = ?, updated_at = ? WHERE id = ?",
		nullString(projectID), nullString(folderID), time.Now().UTC(), id)
}

// SoftDelete moves a file to the trash by stamping deleted_at.
func (r *FileRepository) SoftDelete(id string) error {
	return r.update(id, "UPDATE files SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().UTC(), time.Now().UTC(), id)
}

// Restore clears the deletion timestamp.
func (r *FileRepository) Restore(id string) error {
	return r.update(id, "UPDATE files SET deleted_at = NULL, updated_at = ? WHERE id = ?", time.Now().UTC(), id)
}

// HardDelete removes the record permanently.
func (r *FileRepository) HardDelete(id string) error {
	result, err := r.db.Exec("DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return &types.PersistenceError{Op: "delete file", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.PersistenceError{Op: "delete file", Err: fmt.Errorf("file not found: %s", id)}
	}
	return nil
}

func (r *FileRepository) update(id, query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return &types.PersistenceError{Op: "update file", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.PersistenceError{Op: "update file", Err: fmt.Errorf("file not found: %s", id)}
	}
	return nil
}

// sortColumns whitelists the server-side sortable fields.
var sortColumns = map[string]string{
	"name":       "name",
	"size":       "size",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListPage returns one page of files for a view with server-side ordering,
// plus the total count matching the view predicate. The recent view's
// cutoff is measured from now.
func (r *FileRepository) ListPage(workspaceID string, view types.View, page, perPage int, sortBy string, dir types.SortDirection, now time.Time) ([]*types.FileRecord, int, error) {
	where := "workspace_id = ?"
	args := []interface{}{workspaceID}

	switch view {
	case types.ViewTrash:
		where += " AND deleted_at IS NOT NULL"
	case types.ViewFavorites:
		where += " AND deleted_at IS NULL AND favorite = TRUE"
	case types.ViewRecent:
		where += " AND deleted_at IS NULL AND updated_at > ?"
		args = append(args, now.Add(-recentWindow))
	default:
		where += " AND deleted_at IS NULL"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM files WHERE " + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, &types.PersistenceError{Op: "count files", Err: err}
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if dir == types.SortAsc {
		direction = "ASC"
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	query := fmt.Sprintf("SELECT %s FROM files WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		fileColumns, where, column, direction)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, &types.PersistenceError{Op: "list files", Err: err}
	}
	defer rows.Close()

	files, err := collectFiles(rows)
	if err != nil {
		return nil, 0, &types.PersistenceError{Op: "list files", Err: err}
	}
	return files, total, nil
}

// ListAll returns every non-deleted file in a workspace, newest first. This
// backs global search, which intentionally bypasses paging.
func (r *FileRepository) ListAll(workspaceID string) ([]*types.FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE workspace_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, workspaceID)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list files", Err: err}
	}
	defer rows.Close()

	files, err := collectFiles(rows)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list files", Err: err}
	}
	return files, nil
}

// ListByTag returns non-deleted files holding the tag, compared
// case-insensitively against each file's tag set.
func (r *FileRepository) ListByTag(workspaceID, tag string) ([]*types.FileRecord, error) {
	all, err := r.ListAll(workspaceID)
	if err != nil {
		return nil, err
	}

	var matched []*types.FileRecord
	for _, f := range all {
		if f.HasTag(tag) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row rowScanner) (*types.FileRecord, error) {
	var f types.FileRecord
	var category, tagsJSON string
	var projectID, folderID sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.OriginalName,
		&f.Size,
		&f.MimeType,
		&category,
		&f.StoragePath,
		&f.URL,
		&f.ThumbnailURL,
		&f.Favorite,
		&tagsJSON,
		&f.WorkspaceID,
		&projectID,
		&folderID,
		&deletedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Category = types.Category(category)
	f.ProjectID = projectID.String
	f.FolderID = folderID.String
	if deletedAt.Valid {
		t := deletedAt.Time
		f.DeletedAt = &t
	}
	if err := json.Unmarshal([]byte(tagsJSON), &f.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", f.ID, err)
	}

	return &f, nil
}

func collectFiles(rows *sql.Rows) ([]*types.FileRecord, error) {
	var files []*types.FileRecord
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
