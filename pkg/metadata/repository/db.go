package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the metadata database connection shared by the repositories.
type DB struct {
	db *sql.DB
}

// NewDB opens (or creates) the metadata database and ensures the schema.
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &DB{db: db}
	if err := d.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return d, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Files returns the file repository backed by this database.
func (d *DB) Files() *FileRepository {
	return &FileRepository{db: d.db}
}

// Projects returns the project repository backed by this database.
func (d *DB) Projects() *ProjectRepository {
	return &ProjectRepository{db: d.db}
}

// Folders returns the folder repository backed by this database.
func (d *DB) Folders() *FolderRepository {
	return &FolderRepository{db: d.db}
}

// Preferences returns the preferences repository backed by this database.
func (d *DB) Preferences() *PreferenceRepository {
	return &PreferenceRepository{db: d.db}
}

func (d *DB) initTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		original_name TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT 'application/octet-stream',
		category TEXT NOT NULL DEFAULT 'other',
		storage_path TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		favorite BOOLEAN NOT NULL DEFAULT FALSE,
		tags TEXT, -- JSON array
		workspace_id TEXT NOT NULL,
		project_id TEXT,
		folder_id TEXT,
		deleted_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_files_storage_path ON files(storage_path);
	CREATE INDEX IF NOT EXISTS idx_files_workspace ON files(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_files_deleted_at ON files(deleted_at);
	CREATE INDEX IF NOT EXISTS idx_files_updated_at ON files(updated_at);
	CREATE INDEX IF NOT EXISTS idx_files_favorite ON files(favorite);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		workspace_id TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_projects_workspace ON projects(workspace_id);

	CREATE TABLE IF NOT EXISTS folders (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT,
		project_id TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_folders_project ON folders(project_id);
	CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);

	CREATE TABLE IF NOT EXISTS preferences (
		workspace_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (workspace_id, key)
	);
	`

	_, err := d.db.Exec(query)
	return err
}
