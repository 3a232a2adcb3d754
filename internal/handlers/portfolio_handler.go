package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/services"
)

var ethAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// PortfolioHandler handles wallet portfolio requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// GetPortfolio handles building a valued, risk-scored portfolio snapshot.
// @Summary     Get wallet portfolio
// @Description Value a wallet's token holdings and DeFi positions with risk scores
// @Tags        portfolio
// @Produce     json
// @Param       address path string true "Wallet address (0x-prefixed)"
// @Success     200 {object} models.PortfolioSnapshot "Portfolio snapshot"
// @Failure     400 {object} ErrorResponse            "Invalid address"
// @Failure     502 {object} ErrorResponse            "Balance provider unavailable"
// @Router      /portfolio/{address} [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	address := c.Param("address")
	if !ethAddressRegex.MatchString(address) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid wallet address"))
		return
	}

	snapshot, err := h.portfolioService.BuildPortfolio(c.Request.Context(), address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
