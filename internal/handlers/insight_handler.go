package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/pagination"
	"nuvolari/internal/services"
)

// InsightHandler handles the insight lifecycle endpoints.
type InsightHandler struct {
	insightService services.InsightServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// GenerateInsightsRequest represents the request payload for generating insights.
type GenerateInsightsRequest struct {
	Address string  `json:"address" binding:"required,eth_address"`
	MinRisk float64 `json:"min_risk" binding:"required,min=1,max=5"`
	MaxRisk float64 `json:"max_risk" binding:"required,min=1,max=5"`
	Force   bool    `json:"force"`
}

// GenerateInsights handles generating a fresh batch of recommendations.
// @Summary     Generate insights
// @Description Build the wallet's portfolio and ask the recommendation engine for insights in the given risk range
// @Tags        insights
// @Accept      json
// @Produce     json
// @Param       request body GenerateInsightsRequest true "Generation parameters"
// @Success     201 {object} map[string]any "Created insights"
// @Failure     400 {object} ErrorResponse  "Invalid input"
// @Failure     409 {object} ErrorResponse  "Pending insights exist"
// @Failure     502 {object} ErrorResponse  "Engine or provider unavailable"
// @Router      /insights/generate [post]
func (h *InsightHandler) GenerateInsights(c *gin.Context) {
	var req GenerateInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.MinRisk > req.MaxRisk {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"min_risk must not exceed max_risk"))
		return
	}

	insights, err := h.insightService.Generate(c.Request.Context(), req.Address, req.MinRisk, req.MaxRisk, req.Force)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insights": insights})
}

// GetPendingQuery represents the query parameters for listing pending insights.
type GetPendingQuery struct {
	Address string `form:"address" binding:"required,eth_address"`
	pagination.PageRequest
}

// GetPendingInsights handles listing a user's pending insights.
// @Summary     List pending insights
// @Description List the wallet's PENDING insights, newest first
// @Tags        insights
// @Produce     json
// @Param       address   query string true  "Wallet address (0x-prefixed)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Insight] "Paginated insights"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /insights/pending [get]
func (h *InsightHandler) GetPendingInsights(c *gin.Context) {
	var query GetPendingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.insightService.GetPending(query.Address, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ExecuteInsightRequest represents the request payload for executing an insight.
type ExecuteInsightRequest struct {
	Address string `json:"address" binding:"required,eth_address"`
	TxHash  string `json:"tx_hash" binding:"required"`
}

// ExecuteInsight handles marking an insight as executed.
// @Summary     Execute insight
// @Description Mark a pending insight executed and stale the rest of the batch
// @Tags        insights
// @Accept      json
// @Produce     json
// @Param       id      path string                true "Insight ID"
// @Param       request body ExecuteInsightRequest true "Execution details"
// @Success     200 {object} models.Insight "Executed insight"
// @Failure     404 {object} ErrorResponse  "Insight not found"
// @Failure     409 {object} ErrorResponse  "Insight not pending"
// @Router      /insights/{id}/execute [post]
func (h *InsightHandler) ExecuteInsight(c *gin.Context) {
	var req ExecuteInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	insight, err := h.insightService.MarkExecuted(c.Param("id"), req.TxHash, req.Address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, insight)
}
