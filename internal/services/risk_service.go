package services

import (
	"errors"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	"nuvolari/internal/codec"
	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/models"
)

const (
	// Combined pool risk is a fixed blend of protocol risk and the
	// average risk of the pool's underlying tokens.
	protocolRiskWeight = 0.6
	tokenRiskWeight    = 0.4

	// defaultRiskScore is the documented "medium" fallback used whenever
	// an entity has no risk data. It is a default, not error masking.
	defaultRiskScore = 2.5

	defaultPoolLimit = 50
)

// gradeRange is the score sub-range a letter grade maps back to.
type gradeRange struct {
	min, max float64
}

var gradeRanges = map[string]gradeRange{
	"A": {0, 1.8},
	"B": {1.8, 2.4},
	"C": {2.4, 3.0},
	"D": {3.0, 3.6},
	"E": {3.6, 5.0},
}

// round2 rounds to 2 decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// riskService computes derived risk scores from the append-only risk
// tables.
type riskService struct {
	db *gorm.DB
}

// NewRiskService creates a new RiskServicer.
func NewRiskService(db *gorm.DB) RiskServicer {
	return &riskService{db: db}
}

// currentTokenRisks fetches the most recent risk score for each of the
// given token addresses in a single query. Tokens with no risk rows are
// absent from the map.
func currentTokenRisks(db *gorm.DB, tokenIDs []string) (map[string]float64, error) {
	if len(tokenIDs) == 0 {
		return map[string]float64{}, nil
	}

	type riskRow struct {
		TokenID   string
		RiskScore float64
	}
	var rows []riskRow

	subq := db.Table("token_risks").
		Select("token_id, MAX(created_at) AS max_created").
		Where("token_id IN ?", tokenIDs).
		Group("token_id")

	if err := db.Table("token_risks tr").
		Select("tr.token_id, tr.risk_score").
		Joins("INNER JOIN (?) latest ON tr.token_id = latest.token_id AND tr.created_at = latest.max_created", subq).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := make(map[string]float64, len(rows))
	for _, r := range rows {
		result[r.TokenID] = r.RiskScore
	}
	return result, nil
}

// currentProtocolRisk returns the protocol's most recent risk record, or
// the medium fallback when none exists. Risks must be preloaded
// newest-first.
func currentProtocolRisk(protocol *models.Protocol) (float64, string) {
	if len(protocol.Risks) == 0 {
		return defaultRiskScore, "C"
	}
	risk := protocol.Risks[0]
	grade := risk.Grade
	if grade == "" {
		grade = codec.GradeForScore(risk.FinalPRF)
	}
	return risk.FinalPRF, grade
}

// combinePoolRisk blends protocol risk with the average current risk of
// the pool's underlying tokens. Either side falls back to the medium
// default when data is absent.
func combinePoolRisk(pool *models.Pool, tokenRisks map[string]float64) float64 {
	protocolRisk, _ := currentProtocolRisk(&pool.Protocol)

	tokenRisk := defaultRiskScore
	if len(pool.UnderlyingTokens) > 0 {
		var sum float64
		var n int
		for _, addr := range pool.UnderlyingTokens {
			if score, ok := tokenRisks[strings.ToLower(addr)]; ok {
				sum += score
				n++
			}
		}
		if n > 0 {
			tokenRisk = sum / float64(n)
		}
	}

	return round2(protocolRisk*protocolRiskWeight + tokenRisk*tokenRiskWeight)
}

// underlyingTokenSet collects the deduplicated, lower-cased underlying
// token addresses across the given pools.
func underlyingTokenSet(pools []models.Pool) []string {
	seen := make(map[string]struct{})
	var addrs []string
	for i := range pools {
		for _, addr := range pools[i].UnderlyingTokens {
			lower := strings.ToLower(addr)
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			addrs = append(addrs, lower)
		}
	}
	return addrs
}

// preloadProtocolRisks orders preloaded risk records newest-first so the
// first element is always the current record.
func preloadProtocolRisks(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// ComputeCombinedPoolRisk computes the blended risk score for one pool.
func (s *riskService) ComputeCombinedPoolRisk(pool *models.Pool) (float64, error) {
	addrs := underlyingTokenSet([]models.Pool{*pool})
	tokenRisks, err := currentTokenRisks(s.db, addrs)
	if err != nil {
		return 0, err
	}
	return combinePoolRisk(pool, tokenRisks), nil
}

// GetPoolRiskScore returns a pool's combined score with the components it
// was blended from.
func (s *riskService) GetPoolRiskScore(poolID string) (*models.PoolRiskBreakdown, error) {
	var pool models.Pool
	if err := s.db.Preload("Protocol").Preload("Protocol.Risks", preloadProtocolRisks).
		First(&pool, "id = ?", poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPoolNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	addrs := underlyingTokenSet([]models.Pool{pool})
	tokenRisks, err := currentTokenRisks(s.db, addrs)
	if err != nil {
		return nil, err
	}

	score := combinePoolRisk(&pool, tokenRisks)
	protocolRisk, protocolGrade := currentProtocolRisk(&pool.Protocol)

	breakdown := &models.PoolRiskBreakdown{
		PoolID:        pool.ID,
		RiskScore:     score,
		Grade:         codec.GradeForScore(score),
		ProtocolRisk:  protocolRisk,
		ProtocolGrade: protocolGrade,
	}

	var sum float64
	var n int
	for _, addr := range pool.UnderlyingTokens {
		if risk, ok := tokenRisks[strings.ToLower(addr)]; ok {
			sum += risk
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		breakdown.TokenRisk = &avg
	}

	return breakdown, nil
}

// GetPoolsByRiskRange loads pools (optionally chain-filtered), computes
// each pool's combined risk, and returns those inside [minRisk, maxRisk]
// sorted ascending by score, paginated. Token risks for every pool's
// underlying set are fetched in one batch.
func (s *riskService) GetPoolsByRiskRange(minRisk, maxRisk float64, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
	if limit <= 0 {
		limit = defaultPoolLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.Preload("Protocol").Preload("Protocol.Risks", preloadProtocolRisks)
	if chainID != nil {
		query = query.Where("chain_id = ?", *chainID)
	}

	var pools []models.Pool
	if err := query.Find(&pools).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tokenRisks, err := currentTokenRisks(s.db, underlyingTokenSet(pools))
	if err != nil {
		return nil, err
	}

	scored := make([]models.PoolWithRisk, 0, len(pools))
	for i := range pools {
		score := combinePoolRisk(&pools[i], tokenRisks)
		if score < minRisk || score > maxRisk {
			continue
		}
		scored = append(scored, models.PoolWithRisk{Pool: pools[i], CombinedRiskScore: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CombinedRiskScore < scored[j].CombinedRiskScore
	})

	if offset >= len(scored) {
		return []models.PoolWithRisk{}, nil
	}
	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}
	return scored[offset:end], nil
}

// GetPoolsByGrade maps a letter grade to its score sub-range and
// delegates to GetPoolsByRiskRange.
func (s *riskService) GetPoolsByGrade(grade string, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
	r, ok := gradeRanges[strings.ToUpper(grade)]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown risk grade: "+grade)
	}
	return s.GetPoolsByRiskRange(r.min, r.max, chainID, limit, offset)
}

// GetTokensByRiskRange returns tokens whose current risk score falls
// inside [minRisk, maxRisk], with the score attached.
func (s *riskService) GetTokensByRiskRange(minRisk, maxRisk float64) ([]models.TokenWithRisk, error) {
	var tokens []models.Token
	if err := s.db.Find(&tokens).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ids := make([]string, len(tokens))
	for i := range tokens {
		ids[i] = tokens[i].ID
	}
	risks, err := currentTokenRisks(s.db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.TokenWithRisk, 0, len(tokens))
	for i := range tokens {
		score, ok := risks[tokens[i].ID]
		if !ok || score < minRisk || score > maxRisk {
			continue
		}
		result = append(result, models.TokenWithRisk{Token: tokens[i], RiskScore: score})
	}
	return result, nil
}
