package jobs

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/logger"
	"nuvolari/internal/models"
	"nuvolari/internal/provider"
)

// RiskRefresher recomputes token risk scores from current market data.
// Each run appends a new TokenRisk row per scored token; history is never
// rewritten.
type RiskRefresher struct {
	db     *gorm.DB
	market provider.MarketClient
}

// NewRiskRefresher creates a RiskRefresher.
func NewRiskRefresher(db *gorm.DB, market provider.MarketClient) *RiskRefresher {
	return &RiskRefresher{db: db, market: market}
}

// Job wraps the refresher as a schedulable job.
func (r *RiskRefresher) Job(interval time.Duration) Job {
	return Job{Name: "risk-refresh", Interval: interval, Run: r.Run}
}

// Run fetches market data for every token with a market listing and
// persists the recomputed scores in a single transaction.
func (r *RiskRefresher) Run(ctx context.Context) error {
	var tokens []models.Token
	if err := r.db.WithContext(ctx).Where("coingecko_id IS NOT NULL").Find(&tokens).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(tokens) == 0 {
		return nil
	}

	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, *t.CoingeckoID)
	}

	markets, err := r.market.GetMarkets(ctx, ids)
	if err != nil {
		return err
	}

	marketsByID := make(map[string]provider.MarketData, len(markets))
	for _, m := range markets {
		marketsByID[m.ID] = m
	}

	risks := make([]models.TokenRisk, 0, len(tokens))
	for _, token := range tokens {
		market, ok := marketsByID[*token.CoingeckoID]
		if !ok {
			logger.Get().Warnw("no market data for token",
				"token", token.ID,
				"coingecko_id", *token.CoingeckoID,
			)
			continue
		}
		risks = append(risks, models.TokenRisk{
			TokenID:   token.ID,
			RiskScore: ScoreToken(market),
		})
	}
	if len(risks) == 0 {
		return nil
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&risks).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("token risk scores refreshed", "tokens", len(risks))
	return nil
}

// ScoreToken derives a 1-5 risk score from a token's market profile. Four
// equally weighted signals: market cap size, 24h volatility, liquidity
// relative to cap, and distance from the all-time high.
func ScoreToken(m provider.MarketData) float64 {
	score := (marketCapRisk(m.MarketCap) +
		volatilityRisk(m.PriceChangePct24h) +
		liquidityRisk(m.TotalVolume, m.MarketCap) +
		athDropRisk(m.ATHChangePct)) / 4

	return round2(clamp(score, 1, 5))
}

// Larger caps score lower. log10(1e10)/2 = 5, so a $10B cap bottoms out
// at the minimum.
func marketCapRisk(marketCap float64) float64 {
	if marketCap <= 0 {
		return 3
	}
	return math.Max(1, 5-math.Log10(marketCap)/2)
}

func volatilityRisk(priceChangePct24h float64) float64 {
	if math.Abs(priceChangePct24h) > 15 {
		return 3.5
	}
	return 2
}

func liquidityRisk(totalVolume, marketCap float64) float64 {
	if marketCap <= 0 {
		return 2
	}
	ratio := totalVolume / marketCap
	switch {
	case ratio < 0.05:
		return 3.5
	case ratio < 0.1:
		return 3
	case ratio < 0.2:
		return 2.5
	default:
		return 2
	}
}

func athDropRisk(athChangePct float64) float64 {
	drop := math.Abs(athChangePct)
	switch {
	case drop > 80:
		return 3.5
	case drop > 60:
		return 3
	case drop > 40:
		return 2.5
	default:
		return 2
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
