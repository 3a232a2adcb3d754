package services

import (
	"context"
	"time"

	"nuvolari/internal/models"
	"nuvolari/internal/pagination"
)

// RiskServicer defines the contract for risk aggregation.
type RiskServicer interface {
	ComputeCombinedPoolRisk(pool *models.Pool) (float64, error)
	GetPoolRiskScore(poolID string) (*models.PoolRiskBreakdown, error)
	GetPoolsByRiskRange(minRisk, maxRisk float64, chainID *int, limit, offset int) ([]models.PoolWithRisk, error)
	GetPoolsByGrade(grade string, chainID *int, limit, offset int) ([]models.PoolWithRisk, error)
	GetTokensByRiskRange(minRisk, maxRisk float64) ([]models.TokenWithRisk, error)
}

// PortfolioServicer defines the contract for wallet valuation.
type PortfolioServicer interface {
	BuildPortfolio(ctx context.Context, address string) (*models.PortfolioSnapshot, error)
}

// InsightServicer defines the contract for the insight lifecycle.
type InsightServicer interface {
	Generate(ctx context.Context, address string, minRisk, maxRisk float64, force bool) ([]models.Insight, error)
	GetPending(address string, page pagination.PageRequest) (*pagination.PageResponse[models.Insight], error)
	HasPending(address string) (bool, int64, error)
	MarkExecuted(insightID, txHash, address string) (*models.Insight, error)
	SweepStale(olderThan time.Time) (int64, error)
}
