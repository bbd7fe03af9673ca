package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/service"
)

// HealthHandler reports liveness and whether a model is being served.
type HealthHandler struct {
	snapshots *service.SnapshotHolder
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(snapshots *service.SnapshotHolder) *HealthHandler {
	return &HealthHandler{snapshots: snapshots}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	snap := h.snapshots.Load()
	body := gin.H{
		"status":      "ok",
		"model_ready": snap != nil,
	}
	if snap != nil {
		body["snapshot"] = snap.Version()
		body["clusters"] = snap.Model.K()
	}
	c.JSON(http.StatusOK, body)
}
