package handlers

import (
	"net/http"
	"testing"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/models"
	"nuvolari/internal/services"

	"github.com/gin-gonic/gin"
)

// --- mock risk service ---

type mockRiskService struct {
	computeCombinedPoolRiskFn func(pool *models.Pool) (float64, error)
	getPoolRiskScoreFn        func(poolID string) (*models.PoolRiskBreakdown, error)
	getPoolsByRiskRangeFn     func(minRisk, maxRisk float64, chainID *int, limit, offset int) ([]models.PoolWithRisk, error)
	getPoolsByGradeFn         func(grade string, chainID *int, limit, offset int) ([]models.PoolWithRisk, error)
	getTokensByRiskRangeFn    func(minRisk, maxRisk float64) ([]models.TokenWithRisk, error)
}

func (m *mockRiskService) ComputeCombinedPoolRisk(pool *models.Pool) (float64, error) {
	if m.computeCombinedPoolRiskFn != nil {
		return m.computeCombinedPoolRiskFn(pool)
	}
	return 2.5, nil
}

func (m *mockRiskService) GetPoolRiskScore(poolID string) (*models.PoolRiskBreakdown, error) {
	if m.getPoolRiskScoreFn != nil {
		return m.getPoolRiskScoreFn(poolID)
	}
	return &models.PoolRiskBreakdown{}, nil
}

func (m *mockRiskService) GetPoolsByRiskRange(minRisk, maxRisk float64, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
	if m.getPoolsByRiskRangeFn != nil {
		return m.getPoolsByRiskRangeFn(minRisk, maxRisk, chainID, limit, offset)
	}
	return []models.PoolWithRisk{}, nil
}

func (m *mockRiskService) GetPoolsByGrade(grade string, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
	if m.getPoolsByGradeFn != nil {
		return m.getPoolsByGradeFn(grade, chainID, limit, offset)
	}
	return []models.PoolWithRisk{}, nil
}

func (m *mockRiskService) GetTokensByRiskRange(minRisk, maxRisk float64) ([]models.TokenWithRisk, error) {
	if m.getTokensByRiskRangeFn != nil {
		return m.getTokensByRiskRangeFn(minRisk, maxRisk)
	}
	return []models.TokenWithRisk{}, nil
}

// verify interface compliance
var _ services.RiskServicer = (*mockRiskService)(nil)

func setupPoolRouter(handler *PoolHandler) *gin.Engine {
	r := gin.New()
	r.GET("/pools/risk", handler.ListPoolsByRisk)
	r.GET("/pools/:id/risk", handler.GetPoolRisk)
	return r
}

// --- tests ---

func TestPoolHandler_ListPoolsByRisk(t *testing.T) {
	t.Run("defaults_to_full_range", func(t *testing.T) {
		svc := &mockRiskService{
			getPoolsByRiskRangeFn: func(minRisk, maxRisk float64, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
				if minRisk != 1 || maxRisk != 5 {
					t.Errorf("expected full range, got [%v, %v]", minRisk, maxRisk)
				}
				return []models.PoolWithRisk{{Pool: models.Pool{Name: "Silo USDC"}, CombinedRiskScore: 2.7}}, nil
			},
		}
		r := setupPoolRouter(NewPoolHandler(svc))

		rec := doRequest(r, "GET", "/pools/risk", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		pools := result["pools"].([]interface{})
		if len(pools) != 1 {
			t.Errorf("expected 1 pool, got %d", len(pools))
		}
	})

	t.Run("passes_range_and_chain", func(t *testing.T) {
		svc := &mockRiskService{
			getPoolsByRiskRangeFn: func(minRisk, maxRisk float64, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
				if minRisk != 1.5 || maxRisk != 3 {
					t.Errorf("unexpected range [%v, %v]", minRisk, maxRisk)
				}
				if chainID == nil || *chainID != 146 {
					t.Errorf("unexpected chain filter %v", chainID)
				}
				if limit != 10 || offset != 20 {
					t.Errorf("unexpected paging %d/%d", limit, offset)
				}
				return []models.PoolWithRisk{}, nil
			},
		}
		r := setupPoolRouter(NewPoolHandler(svc))

		rec := doRequest(r, "GET", "/pools/risk?min_risk=1.5&max_risk=3&chain_id=146&limit=10&offset=20", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("routes_grade_queries", func(t *testing.T) {
		svc := &mockRiskService{
			getPoolsByGradeFn: func(grade string, chainID *int, limit, offset int) ([]models.PoolWithRisk, error) {
				if grade != "B" {
					t.Errorf("expected grade B, got %s", grade)
				}
				return []models.PoolWithRisk{}, nil
			},
		}
		r := setupPoolRouter(NewPoolHandler(svc))

		rec := doRequest(r, "GET", "/pools/risk?grade=B", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects_grade_with_range", func(t *testing.T) {
		r := setupPoolRouter(NewPoolHandler(&mockRiskService{}))

		rec := doRequest(r, "GET", "/pools/risk?grade=B&min_risk=1", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects_invalid_grade", func(t *testing.T) {
		r := setupPoolRouter(NewPoolHandler(&mockRiskService{}))

		rec := doRequest(r, "GET", "/pools/risk?grade=Z", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects_inverted_range", func(t *testing.T) {
		r := setupPoolRouter(NewPoolHandler(&mockRiskService{}))

		rec := doRequest(r, "GET", "/pools/risk?min_risk=4&max_risk=2", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPoolHandler_GetPoolRisk(t *testing.T) {
	t.Run("returns_breakdown", func(t *testing.T) {
		tokenRisk := 2.0
		svc := &mockRiskService{
			getPoolRiskScoreFn: func(poolID string) (*models.PoolRiskBreakdown, error) {
				return &models.PoolRiskBreakdown{
					PoolID:        poolID,
					RiskScore:     2.6,
					Grade:         "C",
					ProtocolRisk:  3.0,
					ProtocolGrade: "D",
					TokenRisk:     &tokenRisk,
				}, nil
			},
		}
		r := setupPoolRouter(NewPoolHandler(svc))

		rec := doRequest(r, "GET", "/pools/pool-1/risk", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["risk_score"].(float64) != 2.6 {
			t.Errorf("expected risk_score 2.6, got %v", result["risk_score"])
		}
		if result["grade"] != "C" {
			t.Errorf("expected grade C, got %v", result["grade"])
		}
	})

	t.Run("returns 404 on unknown pool", func(t *testing.T) {
		svc := &mockRiskService{
			getPoolRiskScoreFn: func(_ string) (*models.PoolRiskBreakdown, error) {
				return nil, apperrors.ErrPoolNotFound
			},
		}
		r := setupPoolRouter(NewPoolHandler(svc))

		rec := doRequest(r, "GET", "/pools/unknown/risk", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "POOL_NOT_FOUND")
	})
}
