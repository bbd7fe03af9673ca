package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/logger"
	"github.com/timmy/musicmatch/internal/service"
)

// AdminHandler triggers and reports training runs.
type AdminHandler struct {
	training *service.TrainingService
	recs     *service.RecommendationService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(training *service.TrainingService, recs *service.RecommendationService) *AdminHandler {
	return &AdminHandler{training: training, recs: recs}
}

// TrainRequest is the optional body of POST /api/v1/admin/train.
type TrainRequest struct {
	K     int   `json:"k" binding:"omitempty,min=1,max=64"`
	AutoK *bool `json:"auto_k"`
}

// Train handles POST /api/v1/admin/train. The run continues in the background; a run
// already in progress yields 409.
func (h *AdminHandler) Train(c *gin.Context) {
	ctx := c.Request.Context()

	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	job, err := h.training.StartTrain(ctx, service.TrainOptions{K: req.K, AutoK: req.AutoK})
	if err != nil {
		logger.CtxWarn(ctx, "Training request rejected: %v", err)
		respondError(c, err)
		return
	}

	logger.CtxInfo(ctx, "Training started: job_id=%s, k=%d", job.ID, req.K)
	c.JSON(http.StatusAccepted, gin.H{
		"message": "training started",
		"job":     job,
	})
}

// Status handles GET /api/v1/admin/train/status.
func (h *AdminHandler) Status(c *gin.Context) {
	status, err := h.training.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"training": status,
		"cache":    h.recs.CacheStats(),
	})
}
