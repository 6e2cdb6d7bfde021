package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/types"
)

func (a *API) listProjects(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	projects, err := a.projects.List(sess.WorkspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: projects})
}

type projectRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func (a *API) createProject(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(c, &types.ValidationError{Field: "name", Reason: "must not be empty"})
		return
	}

	now := time.Now().UTC()
	project := &types.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Color:       req.Color,
		Description: req.Description,
		WorkspaceID: sess.WorkspaceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.projects.Insert(project); err != nil {
		respondError(c, err)
		return
	}
	a.publishChange(events.EventProjectsChanged, sess.WorkspaceID, project.ID)
	c.JSON(http.StatusCreated, types.APIResponse{Success: true, Message: "Project created", Data: project})
}

func (a *API) updateProject(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	project, ok := a.lookupProject(c, sess.WorkspaceID)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if req.Name != "" {
		project.Name = strings.TrimSpace(req.Name)
	}
	if req.Color != "" {
		project.Color = req.Color
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if err := a.projects.Update(project); err != nil {
		respondError(c, err)
		return
	}
	a.publishChange(events.EventProjectsChanged, sess.WorkspaceID, project.ID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Project updated", Data: project})
}

// deleteProject removes the project and clears the current-project
// preference when it pointed at the deleted project. Files keep their
// rows; their stale assignment is cleared lazily on next move.
func (a *API) deleteProject(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	project, ok := a.lookupProject(c, sess.WorkspaceID)
	if !ok {
		return
	}
	if err := a.projects.Delete(project.ID); err != nil {
		respondError(c, err)
		return
	}
	if current, err := a.prefs.CurrentProject(sess); err == nil && current == project.ID {
		if err := a.prefs.SetCurrentProject(sess, ""); err != nil {
			respondError(c, err)
			return
		}
	}
	a.publishChange(events.EventProjectsChanged, sess.WorkspaceID, project.ID)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Project deleted"})
}

func (a *API) currentProject(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	id, err := a.prefs.CurrentProject(sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: gin.H{"projectId": id}})
}

type currentProjectRequest struct {
	ProjectID string `json:"projectId"`
}

// setCurrentProject persists the workspace's active project selection.
// An empty projectId clears the selection.
func (a *API) setCurrentProject(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req currentProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if req.ProjectID != "" {
		if _, ok := a.lookupProjectID(c, sess.WorkspaceID, req.ProjectID); !ok {
			return
		}
	}
	if err := a.prefs.SetCurrentProject(sess, req.ProjectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Current project updated"})
}

func (a *API) listFolders(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	project, ok := a.lookupProject(c, sess.WorkspaceID)
	if !ok {
		return
	}
	folders, err := a.folders.ListByProject(project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: folders})
}

type createFolderRequest struct {
	Name      string `json:"name" binding:"required"`
	ProjectID string `json:"projectId" binding:"required"`
	ParentID  string `json:"parentId"`
}

func (a *API) createFolder(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if _, ok := a.lookupProjectID(c, sess.WorkspaceID, req.ProjectID); !ok {
		return
	}

	now := time.Now().UTC()
	folder := &types.Folder{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		ParentID:  req.ParentID,
		ProjectID: req.ProjectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if folder.Name == "" {
		respondError(c, &types.ValidationError{Field: "name", Reason: "must not be empty"})
		return
	}
	if err := a.folders.Insert(folder); err != nil {
		respondError(c, err)
		return
	}
	a.publishChange(events.EventFoldersChanged, sess.WorkspaceID, folder.ID)
	c.JSON(http.StatusCreated, types.APIResponse{Success: true, Message: "Folder created", Data: folder})
}

type updateFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentId"`
}

// updateFolder renames and/or moves a folder. Moves that would make the
// folder its own ancestor are rejected with 400 before any write.
func (a *API) updateFolder(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	folder, err := a.folders.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req updateFolderRequest
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
		if err := a.folders.Rename(folder.ID, name); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.ParentID != nil {
		if err := a.folders.Move(folder.ID, *req.ParentID); err != nil {
			respondError(c, err)
			return
		}
	}

	a.publishChange(events.EventFoldersChanged, sess.WorkspaceID, folder.ID)

	updated, err := a.folders.GetByID(folder.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Folder updated", Data: updated})
}

func (a *API) deleteFolder(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	if err := a.folders.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	a.publishChange(events.EventFoldersChanged, sess.WorkspaceID, c.Param("id"))
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Folder deleted"})
}

// lookupProject fetches the path-parameter project and enforces workspace
// scoping.
func (a *API) lookupProject(c *gin.Context, workspaceID string) (*types.Project, bool) {
	return a.lookupProjectID(c, workspaceID, c.Param("id"))
}

func (a *API) lookupProjectID(c *gin.Context, workspaceID, id string) (*types.Project, bool) {
	project, err := a.projects.GetByID(id)
	if err != nil || project.WorkspaceID != workspaceID {
		c.JSON(http.StatusNotFound, types.APIResponse{
			Success: false,
			Message: "Project not found",
		})
		return nil, false
	}
	return project, true
}

func (a *API) publishChange(eventType events.EventType, workspaceID, entityID string) {
	a.feed.Publish(events.Event{
		Type:        eventType,
		WorkspaceID: workspaceID,
		EntityID:    entityID,
		At:          time.Now(),
	})
}
