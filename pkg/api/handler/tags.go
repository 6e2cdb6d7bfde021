package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/types"
)

func (a *API) listTags(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	usage, err := a.tags.List(sess.WorkspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: usage})
}

type createTagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

func (a *API) createTag(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if err := a.tags.Create(sess.WorkspaceID, req.Tag); err != nil {
		respondError(c, err)
		return
	}
	// Tag mutations rewrite file rows; cached pages are stale now.
	a.loader.Invalidate(sess.WorkspaceID)
	c.JSON(http.StatusCreated, types.APIResponse{Success: true, Message: "Tag created"})
}

type renameTagRequest struct {
	OldTag string `json:"oldTag" binding:"required"`
	NewTag string `json:"newTag" binding:"required"`
}

// renameTag rewrites a tag across the workspace. When the target tag
// already exists on other files the rename is refused with 409 so the
// client can confirm an explicit merge instead.
func (a *API) renameTag(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req renameTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if err := a.tags.Rename(sess.WorkspaceID, req.OldTag, req.NewTag); err != nil {
		respondError(c, err)
		return
	}
	a.loader.Invalidate(sess.WorkspaceID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Tag renamed"})
}

type mergeTagRequest struct {
	SourceTag string `json:"sourceTag" binding:"required"`
	TargetTag string `json:"targetTag" binding:"required"`
}

func (a *API) mergeTag(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req mergeTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if err := a.tags.Merge(sess.WorkspaceID, req.SourceTag, req.TargetTag); err != nil {
		respondError(c, err)
		return
	}
	a.loader.Invalidate(sess.WorkspaceID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Tags merged"})
}

func (a *API) deleteTag(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	if err := a.tags.Delete(sess.WorkspaceID, c.Param("tag")); err != nil {
		respondError(c, err)
		return
	}
	a.loader.Invalidate(sess.WorkspaceID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Tag deleted"})
}
