package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"nuvolari/internal/codec"
	"nuvolari/internal/engine"
	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/logger"
	"nuvolari/internal/models"
	"nuvolari/internal/pagination"
)

type insightService struct {
	db        *gorm.DB
	portfolio PortfolioServicer
	risk      RiskServicer
	engine    engine.Engine
	chainID   int
	timeout   time.Duration

	// One mutex per user address so concurrent Generate calls for the
	// same wallet serialize instead of racing the pending-insight guard.
	userLocks sync.Map
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, portfolio PortfolioServicer, risk RiskServicer, eng engine.Engine, chainID int, timeout time.Duration) InsightServicer {
	return &insightService{
		db:        db,
		portfolio: portfolio,
		risk:      risk,
		engine:    eng,
		chainID:   chainID,
		timeout:   timeout,
	}
}

func (s *insightService) lockUser(address string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(address, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Generate builds the user's portfolio, collects opportunities inside the
// requested risk range, asks the engine for recommendations, and persists
// the parsed batch. An existing PENDING batch blocks generation unless
// force is set, in which case the old batch is marked STALE in the same
// transaction that inserts the new one.
func (s *insightService) Generate(ctx context.Context, address string, minRisk, maxRisk float64, force bool) ([]models.Insight, error) {
	address = normalizeAddress(address)

	mu := s.lockUser(address)
	mu.Lock()
	defer mu.Unlock()

	pending, count, err := s.HasPending(address)
	if err != nil {
		return nil, err
	}
	if pending && !force {
		return nil, apperrors.WithMessagef(apperrors.ErrPendingInsightsExist,
			"%d pending insights exist for %s", count, address)
	}

	snapshot, err := s.portfolio.BuildPortfolio(ctx, address)
	if err != nil {
		return nil, err
	}

	chainID := s.chainID
	pools, err := s.risk.GetPoolsByRiskRange(minRisk, maxRisk, &chainID, defaultPoolLimit, 0)
	if err != nil {
		return nil, err
	}
	tokens, err := s.risk.GetTokensByRiskRange(minRisk, maxRisk)
	if err != nil {
		return nil, err
	}

	opportunities := codec.FormatPools(pools) + "\n" + codec.FormatTokens(tokens)

	engineCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.engine.Generate(engineCtx, minRisk, maxRisk, codec.FormatPortfolio(snapshot), opportunities)
	if err != nil {
		return nil, err
	}

	raw, err := codec.ParseInsights(reply)
	if err != nil {
		logger.Get().Errorw("engine reply could not be parsed",
			"address", address,
			"reply", reply,
		)
		return nil, err
	}

	insights := make([]models.Insight, 0, len(raw))
	for _, r := range raw {
		insight, err := s.resolveInsight(address, r)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *insight)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if force {
			if err := tx.Model(&models.Insight{}).
				Where("user_address = ? AND status = ?", address, models.InsightStatusPending).
				Update("status", models.InsightStatusStale).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(insights) == 0 {
			return nil
		}
		if err := tx.Create(&insights).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return insights, nil
}

// resolveInsight validates a parsed engine row against the database and
// maps it onto a persistable Insight. The input token and protocol slug
// must exist; the output reference is a pool receipt token for YIELD_POOL
// and a token address for TOKEN_OPPORTUNITY. Any miss fails the whole
// batch before the transaction starts, so nothing partial is written.
func (s *insightService) resolveInsight(address string, r codec.RawInsight) (*models.Insight, error) {
	tokenInID := normalizeAddress(r.TokenIn)

	var tokenIn models.Token
	if err := s.db.First(&tokenIn, "id = ?", tokenInID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessagef(apperrors.ErrTokenNotFound, "input token %s", r.TokenIn)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var protocol models.Protocol
	if err := s.db.First(&protocol, "enso_id = ?", r.ProtocolSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessagef(apperrors.ErrProtocolNotFound, "slug %q", r.ProtocolSlug)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	insight := &models.Insight{
		UserAddress:     address,
		Status:          models.InsightStatusPending,
		TokenInID:       tokenIn.ID,
		TokenInAmount:   r.TokenInAmount,
		TokenInDecimals: r.TokenInDecimals,
		InsightShort:    r.InsightShort,
		InsightDetailed: r.InsightDetailed,
		APICall:         r.APICall,
		ProtocolSlug:    r.ProtocolSlug,
	}

	switch models.InsightType(r.InsightType) {
	case models.InsightTypeYieldPool:
		var pool models.Pool
		if err := s.db.First(&pool, "receipt_token_id = ?", normalizeAddress(r.TokenOut)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessagef(apperrors.ErrPoolNotFound, "output pool %s", r.TokenOut)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		insight.Type = models.InsightTypeYieldPool
		insight.PoolOutID = &pool.ID
	case models.InsightTypeTokenOpportunity:
		var tokenOut models.Token
		if err := s.db.First(&tokenOut, "id = ?", normalizeAddress(r.TokenOut)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessagef(apperrors.ErrTokenNotFound, "output token %s", r.TokenOut)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		insight.Type = models.InsightTypeTokenOpportunity
		insight.TokenOutID = &tokenOut.ID
	default:
		return nil, apperrors.WithMessagef(apperrors.ErrInvalidInsightType, "%q", r.InsightType)
	}

	return insight, nil
}

// GetPending returns the user's PENDING insights newest first.
func (s *insightService) GetPending(address string, page pagination.PageRequest) (*pagination.PageResponse[models.Insight], error) {
	address = normalizeAddress(address)
	page.Defaults()

	query := s.db.Model(&models.Insight{}).
		Where("user_address = ? AND status = ?", address, models.InsightStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var insights []models.Insight
	if err := query.
		Preload("TokenIn").
		Preload("TokenOut").
		Preload("PoolOut").
		Preload("PoolOut.Protocol").
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&insights).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(insights, page.Page, page.PageSize, total)
	return &resp, nil
}

func (s *insightService) HasPending(address string) (bool, int64, error) {
	var count int64
	err := s.db.Model(&models.Insight{}).
		Where("user_address = ? AND status = ?", normalizeAddress(address), models.InsightStatusPending).
		Count(&count).Error
	if err != nil {
		return false, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, count, nil
}

// MarkExecuted transitions one of the user's PENDING insights to EXECUTED
// and marks the rest of the user's pending batch STALE, since the executed
// action invalidates recommendations computed against the old portfolio.
func (s *insightService) MarkExecuted(insightID, txHash, address string) (*models.Insight, error) {
	address = normalizeAddress(address)

	var insight models.Insight
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&insight, "id = ? AND user_address = ?", insightID, address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessagef(apperrors.ErrInsightNotFound, "insight %s", insightID)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if insight.Status != models.InsightStatusPending {
			return apperrors.WithMessagef(apperrors.ErrInsightNotPending,
				"insight %s is %s", insightID, insight.Status)
		}

		now := time.Now().UTC()
		insight.Status = models.InsightStatusExecuted
		insight.ExecutionDate = &now
		insight.ExecutionTxHash = &txHash
		if err := tx.Save(&insight).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.Insight{}).
			Where("user_address = ? AND status = ? AND id <> ?", address, models.InsightStatusPending, insight.ID).
			Update("status", models.InsightStatusStale).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &insight, nil
}

// SweepStale marks every PENDING insight created before the cutoff as
// STALE and reports how many rows changed. The update is idempotent.
func (s *insightService) SweepStale(olderThan time.Time) (int64, error) {
	result := s.db.Model(&models.Insight{}).
		Where("status = ? AND created_at < ?", models.InsightStatusPending, olderThan).
		Update("status", models.InsightStatusStale)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}
