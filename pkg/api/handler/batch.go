package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// batchRequest applies one operation to many files at once.
type batchRequest struct {
	Operation string   `json:"operation" binding:"required"` // delete, restore, favorite, unfavorite, move, add_tag
	IDs       []string `json:"ids" binding:"required"`
	ProjectID string   `json:"projectId"`
	FolderID  string   `json:"folderId"`
	Tag       string   `json:"tag"`
}

// batchError records one failed item without aborting the rest.
type batchError struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type batchResponse struct {
	Operation string       `json:"operation"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Errors    []batchError `json:"errors,omitempty"`
	Duration  string       `json:"duration"`
}

// batchFiles runs one operation across many files. Items are processed
// independently; failures are reported per item and never roll back the
// rest of the batch.
func (a *API) batchFiles(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if len(req.IDs) == 0 {
		respondError(c, &types.ValidationError{Field: "ids", Reason: "must not be empty"})
		return
	}

	apply, err := a.batchOp(req)
	if err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	resp := batchResponse{Operation: req.Operation, Total: len(req.IDs)}
	for i, id := range req.IDs {
		record, err := a.files.GetByID(id)
		if err == nil && record.WorkspaceID != sess.WorkspaceID {
			err = fmt.Errorf("file not found: %s", id)
		}
		if err == nil {
			err = apply(record)
		}
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, batchError{Index: i, ID: id, Error: err.Error()})
			continue
		}
		resp.Succeeded++
	}
	resp.Duration = time.Since(start).String()

	if resp.Succeeded > 0 {
		a.filesChanged(sess.WorkspaceID, "")
	}

	c.JSON(http.StatusOK, types.APIResponse{
		Success: resp.Failed == 0,
		Message: fmt.Sprintf("Processed %d of %d files", resp.Succeeded, resp.Total),
		Data:    resp,
	})
}

// batchOp resolves the per-item action for a batch operation.
func (a *API) batchOp(req batchRequest) (func(*types.FileRecord) error, error) {
	switch req.Operation {
	case "delete":
		return func(f *types.FileRecord) error { return a.files.SoftDelete(f.ID) }, nil
	case "restore":
		return func(f *types.FileRecord) error { return a.files.Restore(f.ID) }, nil
	case "favorite":
		return func(f *types.FileRecord) error { return a.files.SetFavorite(f.ID, true) }, nil
	case "unfavorite":
		return func(f *types.FileRecord) error { return a.files.SetFavorite(f.ID, false) }, nil
	case "move":
		return func(f *types.FileRecord) error { return a.files.Move(f.ID, req.ProjectID, req.FolderID) }, nil
	case "add_tag":
		if req.Tag == "" {
			return nil, &types.ValidationError{Field: "tag", Reason: "must not be empty for add_tag"}
		}
		return func(f *types.FileRecord) error {
			if f.HasTag(req.Tag) {
				return nil
			}
			return a.files.SetTags(f.ID, append(f.Tags, req.Tag))
		}, nil
	default:
		return nil, &types.ValidationError{Field: "operation", Reason: "unknown operation " + req.Operation}
	}
}
