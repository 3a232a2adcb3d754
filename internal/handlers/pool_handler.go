package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/services"
)

// PoolHandler handles pool risk queries.
type PoolHandler struct {
	riskService services.RiskServicer
}

// NewPoolHandler creates a new PoolHandler.
func NewPoolHandler(riskService services.RiskServicer) *PoolHandler {
	return &PoolHandler{riskService: riskService}
}

// ListPoolsByRiskQuery represents the query parameters for listing pools by risk.
type ListPoolsByRiskQuery struct {
	MinRisk *float64 `form:"min_risk" binding:"omitempty,min=1,max=5"`
	MaxRisk *float64 `form:"max_risk" binding:"omitempty,min=1,max=5"`
	Grade   string   `form:"grade" binding:"omitempty,risk_grade"`
	ChainID *int     `form:"chain_id" binding:"omitempty,min=1"`
	Limit   int      `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset  int      `form:"offset" binding:"omitempty,min=0"`
}

// ListPoolsByRisk handles listing yield pools filtered by risk range or grade.
// @Summary     List pools by risk
// @Description List yield pools whose combined risk score falls inside a range or grade
// @Tags        pools
// @Produce     json
// @Param       min_risk query number false "Minimum combined risk score (1-5)"
// @Param       max_risk query number false "Maximum combined risk score (1-5)"
// @Param       grade    query string false "Risk grade (A-E), mutually exclusive with min/max"
// @Param       chain_id query int    false "Restrict to one chain"
// @Param       limit    query int    false "Page size (default 50, max 100)"
// @Param       offset   query int    false "Rows to skip"
// @Success     200 {object} map[string]any "Pools with combined risk scores"
// @Failure     400 {object} ErrorResponse  "Invalid input"
// @Router      /pools/risk [get]
func (h *PoolHandler) ListPoolsByRisk(c *gin.Context) {
	var query ListPoolsByRiskQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if query.Grade != "" && (query.MinRisk != nil || query.MaxRisk != nil) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"grade and min_risk/max_risk are mutually exclusive"))
		return
	}

	if query.Grade != "" {
		pools, err := h.riskService.GetPoolsByGrade(query.Grade, query.ChainID, query.Limit, query.Offset)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pools": pools})
		return
	}

	minRisk, maxRisk := 1.0, 5.0
	if query.MinRisk != nil {
		minRisk = *query.MinRisk
	}
	if query.MaxRisk != nil {
		maxRisk = *query.MaxRisk
	}
	if minRisk > maxRisk {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"min_risk must not exceed max_risk"))
		return
	}

	pools, err := h.riskService.GetPoolsByRiskRange(minRisk, maxRisk, query.ChainID, query.Limit, query.Offset)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pools": pools})
}

// GetPoolRisk handles retrieving a single pool's risk breakdown.
// @Summary     Get pool risk breakdown
// @Description Get one pool's combined risk score, grade, and components
// @Tags        pools
// @Produce     json
// @Param       id path string true "Pool ID"
// @Success     200 {object} models.PoolRiskBreakdown "Risk breakdown"
// @Failure     404 {object} ErrorResponse            "Pool not found"
// @Router      /pools/{id}/risk [get]
func (h *PoolHandler) GetPoolRisk(c *gin.Context) {
	breakdown, err := h.riskService.GetPoolRiskScore(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
