package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/search"
	"github.com/assetdeck/assetdeck/pkg/types"
	"github.com/assetdeck/assetdeck/pkg/upload"
)

// maxUploadBytes caps a single multipart request.
const maxUploadBytes = 500 << 20

// uploadFiles accepts one or more files in a multipart form and runs each
// through the upload pipeline. Partial failures still return the records
// that completed.
func (a *API) uploadFiles(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid multipart form",
			Error:   err.Error(),
		})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "No files provided",
		})
		return
	}

	projectID := c.PostForm("project_id")
	folderID := c.PostForm("folder_id")
	autoTagging := c.PostForm("auto_tagging") != "false"

	reqs := make([]upload.Request, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Message: "Failed to read upload",
				Error:   err.Error(),
			})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Message: "Failed to read upload",
				Error:   err.Error(),
			})
			return
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}

		reqs = append(reqs, upload.Request{
			WorkspaceID:  sess.WorkspaceID,
			ProjectID:    projectID,
			FolderID:     folderID,
			OriginalName: fh.Filename,
			MimeType:     mimeType,
			Data:         data,
			AutoTagging:  autoTagging,
		})
	}

	records, allOK := a.pipeline.UploadAll(c.Request.Context(), reqs)
	a.loader.Invalidate(sess.WorkspaceID)
	for _, r := range records {
		a.stats.RecordUpload(r.Size, true)
		if r.ThumbnailURL != "" {
			a.stats.RecordThumbnail()
		}
	}
	for i := len(records); i < len(reqs); i++ {
		a.stats.RecordUpload(0, false)
	}

	status := http.StatusOK
	message := fmt.Sprintf("Uploaded %d files", len(records))
	if !allOK {
		status = http.StatusInternalServerError
		message = fmt.Sprintf("Uploaded %d of %d files", len(records), len(reqs))
	}
	c.JSON(status, types.APIResponse{
		Success: allOK,
		Message: message,
		Data:    records,
	})
}

// listFiles serves the paged file listing. When the search criteria qualify
// as global (query of two or more characters, or any tag filter) the whole
// workspace is searched and paging is bypassed; otherwise filters apply to
// the loaded page only.
func (a *API) listFiles(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}

	criteria := search.Criteria{
		Query:    c.Query("q"),
		Category: search.CategoryFilter(c.DefaultQuery("category", string(search.CategoryAll))),
	}
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				criteria.Tags = append(criteria.Tags, t)
			}
		}
	}

	if search.IsGlobal(criteria) {
		a.stats.RecordSearch()
		items, err := a.searcher.Global(sess.WorkspaceID, criteria)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.APIResponse{
			Success: true,
			Data: types.Page{
				Items:      items,
				TotalCount: len(items),
				Page:       1,
				PerPage:    len(items),
			},
		})
		return
	}

	view := types.View(c.DefaultQuery("view", string(types.ViewAll)))
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	sortBy := c.DefaultQuery("sort_by", "created_at")
	dir := types.SortDirection(c.DefaultQuery("sort_dir", string(types.SortDesc)))

	result, err := a.loader.Load(sess.WorkspaceID, view, page, sortBy, dir)
	if err != nil {
		respondError(c, err)
		return
	}

	if !criteria.Empty() {
		filtered := *result
		filtered.Items = search.Filter(result.Items, criteria, time.Now())
		result = &filtered
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: result})
}

func (a *API) getFile(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	record, ok := a.lookupFile(c, sess.WorkspaceID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: record})
}

type updateFileRequest struct {
	Name      *string   `json:"name"`
	Favorite  *bool     `json:"favorite"`
	Tags      *[]string `json:"tags"`
	ProjectID *string   `json:"projectId"`
	FolderID  *string   `json:"folderId"`
}

// updateFile applies any combination of rename, favorite toggle, tag
// replacement, and project/folder move.
func (a *API) updateFile(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	record, ok := a.lookupFile(c, sess.WorkspaceID)
	if !ok {
		return
	}

	var req updateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(c, &types.ValidationError{Field: "name", Reason: "must not be empty"})
			return
		}
		if err := a.files.Rename(record.ID, name); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Favorite != nil {
		if err := a.files.SetFavorite(record.ID, *req.Favorite); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Tags != nil {
		if err := a.files.SetTags(record.ID, *req.Tags); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.ProjectID != nil || req.FolderID != nil {
		projectID := record.ProjectID
		folderID := record.FolderID
		if req.ProjectID != nil {
			projectID = *req.ProjectID
		}
		if req.FolderID != nil {
			folderID = *req.FolderID
		}
		if err := a.files.Move(record.ID, projectID, folderID); err != nil {
			respondError(c, err)
			return
		}
	}

	a.filesChanged(sess.WorkspaceID, record.ID)

	updated, err := a.files.GetByID(record.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "File updated", Data: updated})
}

// deleteFile soft-deletes by default; ?permanent=true removes the record,
// the stored object, and its thumbnail.
func (a *API) deleteFile(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	record, ok := a.lookupFile(c, sess.WorkspaceID)
	if !ok {
		return
	}

	if c.Query("permanent") == "true" {
		if err := a.files.HardDelete(record.ID); err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := a.store.Delete(ctx, record.StoragePath); err != nil {
			respondError(c, err)
			return
		}
		if record.ThumbnailURL != "" {
			thumbPath := fmt.Sprintf("thumbnails/%s/%s.jpg", record.WorkspaceID, record.ID)
			if err := a.store.Delete(ctx, thumbPath); err != nil {
				respondError(c, err)
				return
			}
		}
		a.filesChanged(sess.WorkspaceID, record.ID)
		c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "File permanently deleted"})
		return
	}

	if err := a.files.SoftDelete(record.ID); err != nil {
		respondError(c, err)
		return
	}
	a.filesChanged(sess.WorkspaceID, record.ID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "File moved to trash"})
}

func (a *API) restoreFile(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	record, ok := a.lookupFile(c, sess.WorkspaceID)
	if !ok {
		return
	}
	if err := a.files.Restore(record.ID); err != nil {
		respondError(c, err)
		return
	}
	a.filesChanged(sess.WorkspaceID, record.ID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "File restored"})
}

// toggleFavorite flips the favorite flag and returns the new value.
func (a *API) toggleFavorite(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	record, ok := a.lookupFile(c, sess.WorkspaceID)
	if !ok {
		return
	}
	if err := a.files.SetFavorite(record.ID, !record.Favorite); err != nil {
		respondError(c, err)
		return
	}
	a.filesChanged(sess.WorkspaceID, record.ID)
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Message: "Favorite updated",
		Data:    gin.H{"favorite": !record.Favorite},
	})
}

// shareFile is the standalone single-file view. It requires no session and
// exposes only display fields.
func (a *API) shareFile(c *gin.Context) {
	record, err := a.files.GetByID(c.Param("fileId"))
	if err != nil || record.Deleted() {
		c.JSON(http.StatusNotFound, types.APIResponse{
			Success: false,
			Message: "File not found",
		})
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: gin.H{
		"id":           record.ID,
		"name":         record.Name,
		"url":          record.URL,
		"thumbnailUrl": record.ThumbnailURL,
		"mimeType":     record.MimeType,
		"category":     record.Category,
		"size":         record.Size,
		"createdAt":    record.CreatedAt,
	}})
}

func (a *API) listUploads(c *gin.Context) {
	if _, ok := a.requireWorkspace(c); !ok {
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: a.tracker.Snapshot()})
}

// lookupFile fetches the path-parameter file and enforces workspace scoping.
func (a *API) lookupFile(c *gin.Context, workspaceID string) (*types.FileRecord, bool) {
	record, err := a.files.GetByID(c.Param("id"))
	if err != nil || record.WorkspaceID != workspaceID {
		c.JSON(http.StatusNotFound, types.APIResponse{
			Success: false,
			Message: "File not found",
		})
		return nil, false
	}
	return record, true
}

// filesChanged invalidates the paged cache and broadcasts to subscribers.
func (a *API) filesChanged(workspaceID, entityID string) {
	a.loader.Invalidate(workspaceID)
	a.feed.Publish(events.Event{
		Type:        events.EventFilesChanged,
		WorkspaceID: workspaceID,
		EntityID:    entityID,
		At:          time.Now(),
	})
}
