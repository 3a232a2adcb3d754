package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nuvolari/internal/codec"
	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/models"
	"nuvolari/internal/provider"
)

// portfolioService values a wallet's balances against the token, pool,
// and risk tables.
type portfolioService struct {
	db       *gorm.DB
	balances provider.BalanceClient
	chainID  int
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, balances provider.BalanceClient, chainID int) PortfolioServicer {
	return &portfolioService{db: db, balances: balances, chainID: chainID}
}

// normalizeRawAmount converts a raw amount string to a plain integer digit
// string. Balance providers occasionally emit scientific notation
// ("2.5e21"); those values are expanded exactly before unit conversion.
func normalizeRawAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid raw amount %q: %w", raw, err)
	}
	return d.Truncate(0), nil
}

// BuildPortfolio fetches the wallet's raw balances, classifies each entry
// as a token holding or a DeFi position, values everything in USD, and
// derives the value-weighted portfolio risk score.
func (s *portfolioService) BuildPortfolio(ctx context.Context, address string) (*models.PortfolioSnapshot, error) {
	address = normalizeAddress(address)

	var chain models.Chain
	if err := s.db.First(&chain, "id = ?", s.chainID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessagef(apperrors.ErrChainNotFound, "chain %d", s.chainID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balances, err := s.balances.GetWalletBalances(ctx, s.chainID, address)
	if err != nil {
		return nil, err
	}

	var dbTokens []models.Token
	if err := s.db.Find(&dbTokens).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var dbPools []models.Pool
	if err := s.db.Preload("Protocol").Preload("Protocol.Risks", preloadProtocolRisks).
		Find(&dbPools).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tokensByAddress := make(map[string]models.Token, len(dbTokens))
	tokenIDs := make([]string, 0, len(dbTokens))
	for _, t := range dbTokens {
		tokensByAddress[normalizeAddress(t.ID)] = t
		tokenIDs = append(tokenIDs, t.ID)
	}

	poolsByReceiptToken := make(map[string]models.Pool, len(dbPools))
	for _, p := range dbPools {
		poolsByReceiptToken[normalizeAddress(p.ReceiptTokenID)] = p
	}

	tokenRisks, err := currentTokenRisks(s.db, tokenIDs)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PortfolioSnapshot{
		UserAddress: address,
		Tokens:      []models.TokenHolding{},
		Positions:   []models.PositionHolding{},
	}

	// Classify every balance entry before any percentage math: the
	// percentages depend on the total, which depends on every holding.
	for _, balance := range balances {
		entryAddress := normalizeAddress(balance.Token)

		rawAmount, err := normalizeRawAmount(balance.Amount)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		amount := rawAmount.Shift(int32(-balance.Decimals))
		amountFloat, _ := amount.Float64()

		price, err := strconv.ParseFloat(balance.Price, 64)
		if err != nil {
			price = 0
		}
		usdValue := price * amountFloat

		if token, ok := tokensByAddress[entryAddress]; ok {
			riskScore := defaultRiskScore
			if score, ok := tokenRisks[token.ID]; ok {
				riskScore = score
			}
			snapshot.Tokens = append(snapshot.Tokens, models.TokenHolding{
				Token:     token,
				Amount:    amount.String(),
				RawAmount: rawAmount.String(),
				Decimals:  balance.Decimals,
				Price:     price,
				UsdValue:  usdValue,
				RiskScore: riskScore,
			})
			continue
		}

		if pool, ok := poolsByReceiptToken[entryAddress]; ok {
			// Positions carry the protocol's raw risk, not the pool's
			// blended score.
			riskScore, _ := currentProtocolRisk(&pool.Protocol)
			snapshot.Positions = append(snapshot.Positions, models.PositionHolding{
				Pool:      pool,
				Amount:    amount.String(),
				RawAmount: rawAmount.String(),
				Decimals:  balance.Decimals,
				Price:     price,
				UsdValue:  usdValue,
				RiskScore: riskScore,
			})
		}
		// Entries matching neither table are dropped.
	}

	var total float64
	for i := range snapshot.Tokens {
		total += snapshot.Tokens[i].UsdValue
	}
	for i := range snapshot.Positions {
		total += snapshot.Positions[i].UsdValue
	}
	snapshot.Total = total

	snapshot.RiskScore = defaultRiskScore
	if total > 0 {
		var weightedRisk float64
		for i := range snapshot.Tokens {
			t := &snapshot.Tokens[i]
			t.Percentage = round2(t.UsdValue / total * 100)
			weightedRisk += t.RiskScore * (t.UsdValue / total)
		}
		for i := range snapshot.Positions {
			p := &snapshot.Positions[i]
			p.Percentage = round2(p.UsdValue / total * 100)
			weightedRisk += p.RiskScore * (p.UsdValue / total)
		}
		snapshot.RiskScore = round2(weightedRisk)
	}
	snapshot.RiskGrade = codec.GradeForScore(snapshot.RiskScore)

	return snapshot, nil
}
