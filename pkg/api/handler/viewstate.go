package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/types"
	"github.com/assetdeck/assetdeck/pkg/view"
)

func (a *API) getViewState(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: a.views.Get(sess.WorkspaceID)})
}

type setViewRequest struct {
	View string `json:"view" binding:"required"`
}

func (a *API) setViewState(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req setViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if err := a.views.Select(sess.WorkspaceID, view.ActiveView(req.View)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: a.views.Get(sess.WorkspaceID)})
}

type setModalRequest struct {
	Name string `json:"name" binding:"required"`
	Open bool   `json:"open"`
}

func (a *API) setModal(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}
	var req setModalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if req.Open {
		a.views.OpenModal(sess.WorkspaceID, req.Name)
	} else {
		a.views.CloseModal(sess.WorkspaceID, req.Name)
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: a.views.Get(sess.WorkspaceID)})
}

// defaultPollTimeout bounds a long-poll when the client does not ask for a
// specific window.
const defaultPollTimeout = 25 * time.Second

// pollEvents long-polls the workspace change feed: it blocks until at
// least one event arrives or the timeout elapses, then drains whatever is
// buffered and returns the batch.
func (a *API) pollEvents(c *gin.Context) {
	sess, ok := a.requireWorkspace(c)
	if !ok {
		return
	}

	timeout := defaultPollTimeout
	if raw := c.Query("timeout_ms"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 && ms <= 60000 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	ch, cancel := a.feed.Subscribe(sess.WorkspaceID)
	defer cancel()

	var batch []events.Event
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-ch:
		batch = append(batch, ev)
	case <-timer.C:
	case <-c.Request.Context().Done():
	}

	// Drain without blocking so a burst arrives as one response.
	for {
		select {
		case ev := <-ch:
			batch = append(batch, ev)
			continue
		default:
		}
		break
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: batch})
}
