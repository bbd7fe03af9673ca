package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/service"
)

const maxSimilarLimit = 50

// SongHandler serves song lookups.
type SongHandler struct {
	recs *service.RecommendationService
}

// NewSongHandler creates a new song handler.
func NewSongHandler(recs *service.RecommendationService) *SongHandler {
	return &SongHandler{recs: recs}
}

// Get handles GET /api/v1/songs/:id.
func (h *SongHandler) Get(c *gin.Context) {
	song, err := h.recs.GetSong(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

// Similar handles GET /api/v1/songs/:id/similar.
func (h *SongHandler) Similar(c *gin.Context) {
	limit, err := parseLimit(c, 0, maxSimilarLimit)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	songs, err := h.recs.SimilarSongs(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"song_id": c.Param("id"), "songs": songs})
}

// parseLimit reads the limit query parameter, capped at max.
func parseLimit(c *gin.Context, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > max {
		return 0, fmt.Errorf("limit must not exceed %d", max)
	}
	return limit, nil
}
