package types

import (
	"strings"
	"time"
)

// Category is the derived classification of a file, computed from its MIME
// type at upload time. It is never edited independently.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryArchive  Category = "archive"
	CategoryOther    Category = "other"
)

// CategoryOf derives the category for a MIME type.
func CategoryOf(mimeType string) Category {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio
	case strings.Contains(mt, "pdf"), strings.Contains(mt, "document"):
		return CategoryDocument
	case strings.Contains(mt, "zip"), strings.Contains(mt, "archive"):
		return CategoryArchive
	default:
		return CategoryOther
	}
}

// FileRecord represents a stored asset's metadata
type FileRecord struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	OriginalName string     `json:"original_name" db:"original_name"`
	Size         int64      `json:"size" db:"size"`
	MimeType     string     `json:"mime_type" db:"mime_type"`
	Category     Category   `json:"category" db:"category"`
	StoragePath  string     `json:"storage_path" db:"storage_path"`
	URL          string     `json:"url" db:"url"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Favorite     bool       `json:"favorite" db:"favorite"`
	Tags         []string   `json:"tags" db:"tags"`
	WorkspaceID  string     `json:"workspace_id" db:"workspace_id"`
	ProjectID    string     `json:"project_id,omitempty" db:"project_id"`
	FolderID     string     `json:"folder_id,omitempty" db:"folder_id"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Deleted reports whether the record is in the trash.
func (f *FileRecord) Deleted() bool {
	return f.DeletedAt != nil
}

// HasTag reports whether the record carries the tag, compared
// case-insensitively. Stored casing is preserved.
func (f *FileRecord) HasTag(tag string) bool {
	want := NormalizeTag(tag)
	for _, t := range f.Tags {
		if NormalizeTag(t) == want {
			return true
		}
	}
	return false
}

// NormalizeTag trims and lower-cases a tag name for comparison. Stored tag
// values keep their original casing.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Project groups files inside a workspace
type Project struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Color       string    `json:"color" db:"color"`
	Description string    `json:"description" db:"description"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Folder is a node in a project's folder tree. Path is the materialized
// path of ancestor folder IDs, used to reject cyclic moves.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  string    `json:"parent_id,omitempty" db:"parent_id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Path      string    `json:"path" db:"path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UploadStatus tracks an in-flight upload's lifecycle
type UploadStatus string

const (
	UploadStatusUploading  UploadStatus = "uploading"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusComplete   UploadStatus = "complete"
	UploadStatusError      UploadStatus = "error"
)

// OptimisticEntry is a transient placeholder for a file whose upload is in
// flight. It is never persisted; it exists only inside the upload tracker.
type OptimisticEntry struct {
	TrackingID   string       `json:"tracking_id"`
	Name         string       `json:"name"`
	OriginalName string       `json:"original_name"`
	Size         int64        `json:"size"`
	MimeType     string       `json:"mime_type"`
	Category     Category     `json:"category"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	Progress     int          `json:"progress"`
	Status       UploadStatus `json:"status"`
	Optimistic   bool         `json:"optimistic"`
	StartedAt    time.Time    `json:"started_at"`
}

// SortDirection for server-side ordering
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// View selects the base predicate for a file listing.
type View string

const (
	ViewAll       View = "all"
	ViewFavorites View = "favorites"
	ViewRecent    View = "recent"
	ViewTrash     View = "trash"
)

// Page is one page of a file listing with server-side sort applied.
type Page struct {
	Items      []*FileRecord `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	HasNext    bool          `json:"has_next"`
	HasPrev    bool          `json:"has_prev"`
}

// TagUsage pairs a tag (first-written casing) with its file count.
// Sentinel records count toward usage so empty tags remain visible.
type TagUsage struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
