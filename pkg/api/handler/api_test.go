package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/metadata/repository"
	"github.com/assetdeck/assetdeck/pkg/middleware"
	"github.com/assetdeck/assetdeck/pkg/query"
	"github.com/assetdeck/assetdeck/pkg/search"
	"github.com/assetdeck/assetdeck/pkg/session"
	"github.com/assetdeck/assetdeck/pkg/storage"
	"github.com/assetdeck/assetdeck/pkg/tags"
	"github.com/assetdeck/assetdeck/pkg/thumbnail"
	"github.com/assetdeck/assetdeck/pkg/types"
	"github.com/assetdeck/assetdeck/pkg/upload"
	"github.com/assetdeck/assetdeck/pkg/view"
)

const (
	testAPIKey    = "test-key"
	testWorkspace = "ws-1"
)

type testServer struct {
	router  *gin.Engine
	db      *repository.DB
	store   *storage.LocalStore
	feed    *events.Feed
	dataDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := repository.NewDB(filepath.Join(dir, "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dataDir := filepath.Join(dir, "data")
	store, err := storage.NewLocalStore(dataDir, "http://localhost:8080/files")
	require.NoError(t, err)

	feed := events.NewFeed()
	tracker := upload.NewTracker()
	thumbs := thumbnail.NewGenerator(store, "")
	pipeline := upload.NewPipeline(store, db.Files(), thumbs, tracker, nil, feed)

	api := NewAPI(Deps{
		APIKey:   testAPIKey,
		Store:    store,
		DB:       db,
		Prefs:    session.NewPreferences(db.Preferences()),
		Pipeline: pipeline,
		Tracker:  tracker,
		Loader:   query.NewLoader(db.Files(), 50),
		Searcher: search.NewService(db.Files(), nil),
		Tags:     tags.NewService(db.Files(), feed),
		Views:    view.NewController(),
		Feed:     feed,
	})

	router := gin.New()
	api.RegisterRoutes(router)

	return &testServer{router: router, db: db, store: store, feed: feed, dataDir: dataDir}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	req.Header.Set(middleware.HeaderWorkspace, testWorkspace)
	req.Header.Set(middleware.HeaderUser, "user-1")

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, name, mimeType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	req.Header.Set(middleware.HeaderWorkspace, testWorkspace)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func newAdminRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	req.Header.Set(middleware.HeaderWorkspace, testWorkspace)
	req.Header.Set(middleware.HeaderRole, string(session.RoleAdmin))
	return req
}

func doRaw(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) types.APIResponse {
	t.Helper()
	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func seedFile(t *testing.T, ts *testServer, name string, tags []string) *types.FileRecord {
	t.Helper()
	now := time.Now().UTC()
	f := &types.FileRecord{
		ID:           uuid.NewString(),
		Name:         name,
		OriginalName: name,
		Size:         10,
		MimeType:     "text/plain",
		Category:     types.CategoryOther,
		StoragePath:  fmt.Sprintf("%s/%s.txt", testWorkspace, uuid.NewString()),
		URL:          "http://localhost:8080/files/" + name,
		Tags:         tags,
		WorkspaceID:  testWorkspace,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, ts.db.Files().Insert(f))
	return f
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkspaceRequired(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestHealthUnauthenticated(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadAndList(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "notes.txt", "text/plain", []byte("hello world"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	w = ts.do(t, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data types.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	assert.Equal(t, "notes.txt", page.Data.Items[0].Name)
	assert.Equal(t, 1, page.Data.TotalCount)
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("project_id", "p1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	req.Header.Set(middleware.HeaderWorkspace, testWorkspace)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFile(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "draft.txt", nil)

	w := ts.do(t, http.MethodPatch, "/api/files/"+f.ID, gin.H{
		"name":     "final.txt",
		"favorite": true,
		"tags":     []string{"Report", "Q3"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated, err := ts.db.Files().GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "final.txt", updated.Name)
	assert.True(t, updated.Favorite)
	assert.Equal(t, []string{"Report", "Q3"}, updated.Tags)
}

func TestUpdateFileRejectsEmptyName(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "draft.txt", nil)

	w := ts.do(t, http.MethodPatch, "/api/files/"+f.ID, gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileWorkspaceScoping(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "mine.txt", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+f.ID, nil)
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	req.Header.Set(middleware.HeaderWorkspace, "other-workspace")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleFavorite(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "fav.txt", nil)

	w := ts.do(t, http.MethodPost, "/api/files/"+f.ID+"/favorite", nil)
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := ts.db.Files().GetByID(f.ID)
	require.NoError(t, err)
	assert.True(t, updated.Favorite)

	w = ts.do(t, http.MethodPost, "/api/files/"+f.ID+"/favorite", nil)
	require.Equal(t, http.StatusOK, w.Code)

	updated, err = ts.db.Files().GetByID(f.ID)
	require.NoError(t, err)
	assert.False(t, updated.Favorite)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "doomed.txt", nil)

	w := ts.do(t, http.MethodDelete, "/api/files/"+f.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/files?view=trash", nil)
	var page struct {
		Data types.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)

	w = ts.do(t, http.MethodGet, "/api/files?view=all", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Empty(t, page.Data.Items)

	w = ts.do(t, http.MethodPost, "/api/files/"+f.ID+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/files?view=all", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data.Items, 1)
}

func TestPermanentDeleteRemovesBytes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "gone.txt", "text/plain", []byte("payload"))
	require.Equal(t, http.StatusOK, w.Code)

	files, err := ts.db.Files().ListAll(testWorkspace)
	require.NoError(t, err)
	require.Len(t, files, 1)
	id := files[0].ID

	w = ts.do(t, http.MethodDelete, "/api/files/"+id+"?permanent=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err = ts.db.Files().GetByID(id)
	assert.Error(t, err)

	var leftovers []string
	err = filepath.Walk(ts.dataDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			leftovers = append(leftovers, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestGlobalSearchBypassesPaging(t *testing.T) {
	ts := newTestServer(t)
	seedFile(t, ts, "sunset-beach.jpg", []string{"summer"})
	seedFile(t, ts, "invoice.pdf", nil)

	w := ts.do(t, http.MethodGet, "/api/files?q=sunset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data types.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	assert.Equal(t, "sunset-beach.jpg", page.Data.Items[0].Name)
	assert.False(t, page.Data.HasNext)
}

func TestTagFilterSearch(t *testing.T) {
	ts := newTestServer(t)
	seedFile(t, ts, "a.txt", []string{"Alpha"})
	seedFile(t, ts, "b.txt", []string{"beta"})

	w := ts.do(t, http.MethodGet, "/api/files?tags=alpha", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data types.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	assert.Equal(t, "a.txt", page.Data.Items[0].Name)
}

func TestTagLifecycle(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "tagged.txt", []string{"Draft"})

	w := ts.do(t, http.MethodGet, "/api/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/tags", gin.H{"tag": "Reviewed"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/tags/rename", gin.H{"oldTag": "Draft", "newTag": "Final"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated, err := ts.db.Files().GetByID(f.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasTag("final"))
	assert.False(t, updated.HasTag("draft"))
}

func TestTagRenameRefreshesCachedListing(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "photo.jpg", []string{"Photo"})

	// Prime the page cache with the old tag.
	w := ts.do(t, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data types.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	require.Equal(t, []string{"Photo"}, page.Data.Items[0].Tags)

	w = ts.do(t, http.MethodPost, "/api/tags/rename", gin.H{"oldTag": "Photo", "newTag": "Picture"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The next listing must not serve the stale cached page.
	w = ts.do(t, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	assert.Equal(t, []string{"Picture"}, page.Data.Items[0].Tags)

	updated, err := ts.db.Files().GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Picture"}, updated.Tags)
}

func TestTagDeleteRefreshesCachedListing(t *testing.T) {
	ts := newTestServer(t)
	seedFile(t, ts, "a.txt", []string{"temp"})

	w := ts.do(t, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/tags/temp", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/files", nil)
	var page struct {
		Data types.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	assert.Empty(t, page.Data.Items[0].Tags)
}

func TestTagRenameConflictReturns409(t *testing.T) {
	ts := newTestServer(t)
	seedFile(t, ts, "a.txt", []string{"old"})
	seedFile(t, ts, "b.txt", []string{"existing"})

	w := ts.do(t, http.MethodPost, "/api/tags/rename", gin.H{"oldTag": "old", "newTag": "existing"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Explicit merge succeeds where the rename refused.
	w = ts.do(t, http.MethodPost, "/api/tags/merge", gin.H{"sourceTag": "old", "targetTag": "existing"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestTagDelete(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "a.txt", []string{"temp", "keep"})

	w := ts.do(t, http.MethodDelete, "/api/tags/temp", nil)
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := ts.db.Files().GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, updated.Tags)
}

func TestProjectLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "Brand Refresh", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data types.Project `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	w = ts.do(t, http.MethodPut, "/api/projects/current", gin.H{"projectId": created.Data.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current struct {
		Data struct {
			ProjectID string `json:"projectId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &current))
	assert.Equal(t, created.Data.ID, current.Data.ProjectID)

	w = ts.do(t, http.MethodPatch, "/api/projects/"+created.Data.ID, gin.H{"name": "Rebrand"})
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting the current project clears the selection.
	w = ts.do(t, http.MethodDelete, "/api/projects/"+created.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/current", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &current))
	assert.Empty(t, current.Data.ProjectID)
}

func TestProjectRequiresName(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFolderTreeAndCycleRejection(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "P"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		Data types.Project `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = ts.do(t, http.MethodPost, "/api/folders", gin.H{"name": "root", "projectId": project.Data.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var root struct {
		Data types.Folder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &root))

	w = ts.do(t, http.MethodPost, "/api/folders", gin.H{
		"name": "child", "projectId": project.Data.ID, "parentId": root.Data.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var child struct {
		Data types.Folder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &child))
	assert.Equal(t, root.Data.ID+"/"+child.Data.ID, child.Data.Path)

	// Moving the root under its own child would create a cycle.
	w = ts.do(t, http.MethodPatch, "/api/folders/"+root.Data.ID, gin.H{"parentId": child.Data.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/"+project.Data.ID+"/folders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var folders struct {
		Data []types.Folder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &folders))
	assert.Len(t, folders.Data, 2)
}

func TestViewStateRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Data view.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, view.ViewFiles, state.Data.Active)

	w = ts.do(t, http.MethodPut, "/api/view", gin.H{"view": "tags"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, view.ViewTags, state.Data.Active)

	w = ts.do(t, http.MethodPut, "/api/view", gin.H{"view": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/view/modal", gin.H{"name": "upload", "open": true})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Data.Modals["upload"])
}

func TestShareUnauthenticated(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "public.txt", nil)

	req := httptest.NewRequest(http.MethodGet, "/share/"+f.ID, nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "public.txt", resp.Data["name"])
	// Workspace internals stay hidden on the share surface.
	assert.NotContains(t, resp.Data, "workspace_id")
}

func TestShareHidesTrashedFiles(t *testing.T) {
	ts := newTestServer(t)
	f := seedFile(t, ts, "hidden.txt", nil)
	require.NoError(t, ts.db.Files().SoftDelete(f.ID))

	req := httptest.NewRequest(http.MethodGet, "/share/"+f.ID, nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUploadsEmpty(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/uploads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestPollEventsReceivesPublished(t *testing.T) {
	ts := newTestServer(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		ts.feed.Publish(events.Event{
			Type:        events.EventFilesChanged,
			WorkspaceID: testWorkspace,
			At:          time.Now(),
		})
	}()

	w := ts.do(t, http.MethodGet, "/api/events?timeout_ms=2000", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []events.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, events.EventFilesChanged, resp.Data[0].Type)
}

func TestPollEventsTimesOutEmpty(t *testing.T) {
	ts := newTestServer(t)

	start := time.Now()
	w := ts.do(t, http.MethodGet, "/api/events?timeout_ms=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, time.Since(start), 2*time.Second)
}
