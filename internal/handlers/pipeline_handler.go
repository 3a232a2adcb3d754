package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nuvolari/internal/jobs"
	"nuvolari/internal/services"
)

// PipelineHandler exposes the periodic jobs as on-demand pipeline endpoints.
type PipelineHandler struct {
	refresher      *jobs.RiskRefresher
	insightService services.InsightServicer
	sweepInterval  time.Duration
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(refresher *jobs.RiskRefresher, insightService services.InsightServicer, sweepInterval time.Duration) *PipelineHandler {
	return &PipelineHandler{refresher: refresher, insightService: insightService, sweepInterval: sweepInterval}
}

// RunRiskRefresh handles triggering an immediate token risk refresh.
// @Summary     Run risk refresh
// @Description Recompute token risk scores from current market data (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} map[string]string "Refresh completed"
// @Failure     401 {object} ErrorResponse     "Invalid API key"
// @Failure     502 {object} ErrorResponse     "Market provider unavailable"
// @Router      /pipeline/jobs/risk-refresh [post]
func (h *PipelineHandler) RunRiskRefresh(c *gin.Context) {
	if err := h.refresher.Run(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// RunStaleSweep handles triggering an immediate stale-insight sweep.
// @Summary     Run stale sweep
// @Description Mark pending insights older than the sweep window as stale (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} map[string]int64 "Swept insight count"
// @Failure     401 {object} ErrorResponse    "Invalid API key"
// @Router      /pipeline/jobs/stale-sweep [post]
func (h *PipelineHandler) RunStaleSweep(c *gin.Context) {
	cutoff := time.Now().UTC().Add(-h.sweepInterval)

	swept, err := h.insightService.SweepStale(cutoff)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights_swept": swept})
}
