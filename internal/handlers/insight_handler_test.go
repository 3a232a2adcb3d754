package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/models"
	"nuvolari/internal/pagination"
	"nuvolari/internal/services"
	"nuvolari/internal/validator"
)

// --- mock insight service ---

type mockInsightService struct {
	generateFn     func(ctx context.Context, address string, minRisk, maxRisk float64, force bool) ([]models.Insight, error)
	getPendingFn   func(address string, page pagination.PageRequest) (*pagination.PageResponse[models.Insight], error)
	hasPendingFn   func(address string) (bool, int64, error)
	markExecutedFn func(insightID, txHash, address string) (*models.Insight, error)
	sweepStaleFn   func(olderThan time.Time) (int64, error)
}

func (m *mockInsightService) Generate(ctx context.Context, address string, minRisk, maxRisk float64, force bool) ([]models.Insight, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, address, minRisk, maxRisk, force)
	}
	return []models.Insight{}, nil
}

func (m *mockInsightService) GetPending(address string, page pagination.PageRequest) (*pagination.PageResponse[models.Insight], error) {
	if m.getPendingFn != nil {
		return m.getPendingFn(address, page)
	}
	resp := pagination.NewPageResponse([]models.Insight{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockInsightService) HasPending(address string) (bool, int64, error) {
	if m.hasPendingFn != nil {
		return m.hasPendingFn(address)
	}
	return false, 0, nil
}

func (m *mockInsightService) MarkExecuted(insightID, txHash, address string) (*models.Insight, error) {
	if m.markExecutedFn != nil {
		return m.markExecutedFn(insightID, txHash, address)
	}
	return &models.Insight{}, nil
}

func (m *mockInsightService) SweepStale(olderThan time.Time) (int64, error) {
	if m.sweepStaleFn != nil {
		return m.sweepStaleFn(olderThan)
	}
	return 0, nil
}

// verify interface compliance
var _ services.InsightServicer = (*mockInsightService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupInsightRouter(handler *InsightHandler) *gin.Engine {
	r := gin.New()
	r.POST("/insights/generate", handler.GenerateInsights)
	r.GET("/insights/pending", handler.GetPendingInsights)
	r.POST("/insights/:id/execute", handler.ExecuteInsight)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

// --- tests ---

func TestInsightHandler_GenerateInsights(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockInsightService{
			generateFn: func(_ context.Context, address string, minRisk, maxRisk float64, force bool) ([]models.Insight, error) {
				if address != testAddress || minRisk != 1.5 || maxRisk != 3 || force {
					t.Errorf("unexpected args: %s %v %v %v", address, minRisk, maxRisk, force)
				}
				return []models.Insight{{InsightShort: "Move to Silo", Status: models.InsightStatusPending}}, nil
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc))

		rec := doRequest(r, "POST", "/insights/generate",
			`{"address":"`+testAddress+`","min_risk":1.5,"max_risk":3}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		insights := result["insights"].([]interface{})
		if len(insights) != 1 {
			t.Errorf("expected 1 insight, got %d", len(insights))
		}
	})

	t.Run("returns 400 on invalid address", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}))

		rec := doRequest(r, "POST", "/insights/generate",
			`{"address":"not-an-address","min_risk":1,"max_risk":3}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on inverted range", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}))

		rec := doRequest(r, "POST", "/insights/generate",
			`{"address":"`+testAddress+`","min_risk":4,"max_risk":2}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on pending conflict", func(t *testing.T) {
		svc := &mockInsightService{
			generateFn: func(_ context.Context, _ string, _, _ float64, _ bool) ([]models.Insight, error) {
				return nil, apperrors.ErrPendingInsightsExist
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc))

		rec := doRequest(r, "POST", "/insights/generate",
			`{"address":"`+testAddress+`","min_risk":1,"max_risk":3}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PENDING_INSIGHTS_EXIST")
	})
}

func TestInsightHandler_GetPendingInsights(t *testing.T) {
	t.Run("returns pending page", func(t *testing.T) {
		svc := &mockInsightService{
			getPendingFn: func(address string, page pagination.PageRequest) (*pagination.PageResponse[models.Insight], error) {
				resp := pagination.NewPageResponse([]models.Insight{
					{InsightShort: "Move to Silo", Status: models.InsightStatusPending},
				}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc))

		rec := doRequest(r, "GET", "/insights/pending?address="+testAddress, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 1 {
			t.Errorf("expected total_items 1, got %v", result["total_items"])
		}
	})

	t.Run("returns 400 without address", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}))

		rec := doRequest(r, "GET", "/insights/pending", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestInsightHandler_ExecuteInsight(t *testing.T) {
	t.Run("returns executed insight", func(t *testing.T) {
		svc := &mockInsightService{
			markExecutedFn: func(insightID, txHash, address string) (*models.Insight, error) {
				if insightID != "insight-1" || txHash != "0xabc" || address != testAddress {
					t.Errorf("unexpected args: %s %s %s", insightID, txHash, address)
				}
				return &models.Insight{Status: models.InsightStatusExecuted}, nil
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc))

		rec := doRequest(r, "POST", "/insights/insight-1/execute",
			`{"address":"`+testAddress+`","tx_hash":"0xabc"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["status"] != "EXECUTED" {
			t.Errorf("expected EXECUTED, got %v", result["status"])
		}
	})

	t.Run("returns 404 on unknown insight", func(t *testing.T) {
		svc := &mockInsightService{
			markExecutedFn: func(_, _, _ string) (*models.Insight, error) {
				return nil, apperrors.ErrInsightNotFound
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc))

		rec := doRequest(r, "POST", "/insights/unknown/execute",
			`{"address":"`+testAddress+`","tx_hash":"0xabc"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSIGHT_NOT_FOUND")
	})

	t.Run("returns 400 without tx hash", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}))

		rec := doRequest(r, "POST", "/insights/insight-1/execute",
			`{"address":"`+testAddress+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
