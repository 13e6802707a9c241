package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vyralflow/vyralflow/internal/domain"
	"github.com/vyralflow/vyralflow/internal/orchestrator"
)

// CampaignHandler handles campaign lifecycle endpoints.
type CampaignHandler struct {
	orch *orchestrator.Orchestrator
}

// NewCampaignHandler creates a new campaign handler.
func NewCampaignHandler(orch *orchestrator.Orchestrator) *CampaignHandler {
	return &CampaignHandler{orch: orch}
}

// CreateCampaign handles POST /api/v1/campaigns.
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var brief domain.CampaignBrief
	if err := c.ShouldBindJSON(&brief); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	campaign, err := h.orch.Submit(c.Request.Context(), brief)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// GetStatus handles GET /api/v1/campaigns/:id/status.
func (h *CampaignHandler) GetStatus(c *gin.Context) {
	campaign, err := h.orch.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// GetResults handles GET /api/v1/campaigns/:id/results.
func (h *CampaignHandler) GetResults(c *gin.Context) {
	id := c.Param("id")
	results, err := h.orch.GetResults(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"results":     results,
	})
}

// ForceComplete handles POST /api/v1/campaigns/:id/force-complete.
func (h *CampaignHandler) ForceComplete(c *gin.Context) {
	campaign, err := h.orch.ForceComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// ListCampaigns handles GET /api/v1/campaigns.
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	status := domain.CampaignStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	campaigns, err := h.orch.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"count":     len(campaigns),
	})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Campaign not found",
		})
	case errors.Is(err, domain.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Campaign has not completed yet",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
