package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pantrysage/backend/internal/service"
	"github.com/pantrysage/backend/internal/types"
)

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	recommender service.Recommender
	logger      zerolog.Logger
}

// NewRecommendHandler creates a new RecommendHandler instance.
func NewRecommendHandler(recommender service.Recommender, logger zerolog.Logger) *RecommendHandler {
	return &RecommendHandler{
		recommender: recommender,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers the recommendation routes.
func (h *RecommendHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recommendations", h.Recommend)
}

// RecommendRequest is the caller-facing input: the dietary profile plus the
// raw pantry text.
type RecommendRequest struct {
	Profile   types.UserProfile `json:"profile" binding:"required"`
	Inventory string            `json:"inventory" binding:"required"`
}

// Recommend handles POST /recommendations.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Profile.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipes, err := h.recommender.Recommend(c.Request.Context(), req.Profile, req.Inventory)
	if err != nil {
		if errors.Is(err, service.ErrRetrievalUnavailable) {
			h.logger.Error().Err(err).Msg("retrieval unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unable to retrieve candidates"})
			return
		}
		h.logger.Error().Err(err).Msg("recommendation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recommend recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
