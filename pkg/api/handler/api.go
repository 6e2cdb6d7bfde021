package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/metadata/repository"
	"github.com/assetdeck/assetdeck/pkg/metrics"
	"github.com/assetdeck/assetdeck/pkg/middleware"
	"github.com/assetdeck/assetdeck/pkg/query"
	"github.com/assetdeck/assetdeck/pkg/search"
	"github.com/assetdeck/assetdeck/pkg/session"
	"github.com/assetdeck/assetdeck/pkg/storage"
	"github.com/assetdeck/assetdeck/pkg/tags"
	"github.com/assetdeck/assetdeck/pkg/types"
	"github.com/assetdeck/assetdeck/pkg/upload"
	"github.com/assetdeck/assetdeck/pkg/view"
)

// API handles HTTP requests for the asset management service.
type API struct {
	apiKey   string
	store    storage.ObjectStore
	files    *repository.FileRepository
	projects *repository.ProjectRepository
	folders  *repository.FolderRepository
	prefs    *session.Preferences
	pipeline *upload.Pipeline
	tracker  *upload.Tracker
	loader   *query.Loader
	searcher *search.Service
	tags     *tags.Service
	views    *view.Controller
	feed     *events.Feed
	stats    *metrics.Collector
}

// Deps carries everything the API wires together.
type Deps struct {
	APIKey   string
	Store    storage.ObjectStore
	DB       *repository.DB
	Prefs    *session.Preferences
	Pipeline *upload.Pipeline
	Tracker  *upload.Tracker
	Loader   *query.Loader
	Searcher *search.Service
	Tags     *tags.Service
	Views    *view.Controller
	Feed     *events.Feed
	Stats    *metrics.Collector
}

// NewAPI creates a new API instance.
func NewAPI(deps Deps) *API {
	if deps.Stats == nil {
		deps.Stats = metrics.NewCollector()
	}
	return &API{
		apiKey:   deps.APIKey,
		store:    deps.Store,
		files:    deps.DB.Files(),
		projects: deps.DB.Projects(),
		folders:  deps.DB.Folders(),
		prefs:    deps.Prefs,
		pipeline: deps.Pipeline,
		tracker:  deps.Tracker,
		loader:   deps.Loader,
		searcher: deps.Searcher,
		tags:     deps.Tags,
		views:    deps.Views,
		feed:     deps.Feed,
		stats:    deps.Stats,
	}
}

// RegisterRoutes registers API routes.
func (a *API) RegisterRoutes(router *gin.Engine) {
	// Unauthenticated surface: health and the standalone share view.
	router.GET("/health", a.healthCheck)
	router.GET("/share/:fileId", a.shareFile)

	api := router.Group("/api")
	api.Use(middleware.APIKeyAuth(a.apiKey))

	api.POST("/files", a.uploadFiles)
	api.GET("/files", a.listFiles)
	api.GET("/files/:id", a.getFile)
	api.PATCH("/files/:id", a.updateFile)
	api.DELETE("/files/:id", a.deleteFile)
	api.POST("/files/:id/restore", a.restoreFile)
	api.POST("/files/:id/favorite", a.toggleFavorite)

	api.GET("/uploads", a.listUploads)

	api.GET("/tags", a.listTags)
	api.POST("/tags", a.createTag)
	api.POST("/tags/rename", a.renameTag)
	api.POST("/tags/merge", a.mergeTag)
	api.DELETE("/tags/:tag", a.deleteTag)

	api.GET("/projects", a.listProjects)
	api.POST("/projects", a.createProject)
	api.GET("/projects/current", a.currentProject)
	api.PUT("/projects/current", a.setCurrentProject)
	api.PATCH("/projects/:id", a.updateProject)
	api.DELETE("/projects/:id", a.deleteProject)
	api.GET("/projects/:id/folders", a.listFolders)

	api.POST("/folders", a.createFolder)
	api.PATCH("/folders/:id", a.updateFolder)
	api.DELETE("/folders/:id", a.deleteFolder)

	api.GET("/view", a.getViewState)
	api.PUT("/view", a.setViewState)
	api.POST("/view/modal", a.setModal)

	api.POST("/files/batch", a.batchFiles)

	api.GET("/events", a.pollEvents)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/stats", a.adminStats)
}

func (a *API) adminStats(c *gin.Context) {
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: a.stats.Stats()})
}

func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "ok"})
}

// requireWorkspace resolves the request session and rejects calls without
// an active workspace.
func (a *API) requireWorkspace(c *gin.Context) (session.Session, bool) {
	sess := middleware.SessionFrom(c)
	if err := sess.Validate(); err != nil {
		respondError(c, err)
		return session.Session{}, false
	}
	return sess, true
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Operation failed"

	switch {
	case errors.Is(err, tags.ErrMergeRequired):
		status = http.StatusConflict
		message = "Target tag already exists; confirm merge"
	case types.IsValidation(err):
		status = http.StatusBadRequest
		message = "Invalid request"
	case types.IsConfiguration(err):
		status = http.StatusPreconditionFailed
		message = "No active workspace"
	case types.IsPersistence(err) && strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
		message = "Not found"
	case types.IsStorage(err):
		message = "Storage operation failed"
	}

	c.JSON(status, types.APIResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
