package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SyncManager controls the background metadata sweep.
type SyncManager interface {
	RunNow()
	IsRunning() bool
	GetNextRunTime() *time.Time
}

// SyncStatusResponse reports the scheduler state.
type SyncStatusResponse struct {
	Running bool   `json:"running"`
	NextRun string `json:"next_run,omitempty"`
}

type SyncController struct {
	manager SyncManager
}

// NewSyncController creates a new SyncController. manager may be nil when the
// scheduler is disabled; the endpoints then report that.
func NewSyncController(manager SyncManager) *SyncController {
	return &SyncController{manager: manager}
}

// Status reports whether the scheduler is active and when it fires next.
func (controller *SyncController) Status(c *gin.Context) {
	if controller.manager == nil {
		c.JSON(http.StatusOK, SyncStatusResponse{Running: false})
		return
	}

	response := SyncStatusResponse{Running: controller.manager.IsRunning()}
	if next := controller.manager.GetNextRunTime(); next != nil {
		response.NextRun = next.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, response)
}

// Trigger starts an immediate metadata sweep.
func (controller *SyncController) Trigger(c *gin.Context) {
	if controller.manager == nil {
		respondBadRequest(c, "metadata sync is not enabled")
		return
	}

	controller.manager.RunNow()
	respondSuccess(c, "metadata sync started")
}
