package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/service"
)

const (
	defaultRecommendLimit = 20
	maxRecommendLimit     = 100
)

// ClusterHandler serves cluster listings, the cluster map and per-cluster recommendations.
type ClusterHandler struct {
	recs *service.RecommendationService
}

// NewClusterHandler creates a new cluster handler.
func NewClusterHandler(recs *service.RecommendationService) *ClusterHandler {
	return &ClusterHandler{recs: recs}
}

// List handles GET /api/v1/clusters.
func (h *ClusterHandler) List(c *gin.Context) {
	clusters, err := h.recs.ListClusters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

// Visualization handles GET /api/v1/clusters/visualization.
func (h *ClusterHandler) Visualization(c *gin.Context) {
	v, err := h.recs.Visualization(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Get handles GET /api/v1/clusters/:id.
func (h *ClusterHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "cluster id must be an integer")
		return
	}
	detail, err := h.recs.GetCluster(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Recommendations handles GET /api/v1/recommendations/:cluster_id.
// The optional user_vector query parameter is a JSON object keyed by feature name.
func (h *ClusterHandler) Recommendations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("cluster_id"))
	if err != nil {
		badRequest(c, "cluster id must be an integer")
		return
	}
	limit, err := parseLimit(c, defaultRecommendLimit, maxRecommendLimit)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var query *domain.FeatureVector
	if raw := c.Query("user_vector"); raw != "" {
		var v domain.FeatureVector
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			badRequest(c, "invalid user_vector: "+err.Error())
			return
		}
		query = &v
	}

	songs, err := h.recs.ClusterRecommendations(c.Request.Context(), id, limit, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cluster_id":   id,
		"personalized": query != nil,
		"songs":        songs,
	})
}
