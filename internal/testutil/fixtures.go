package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"nuvolari/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NextAddress returns a unique, lower-cased 0x address for fixtures.
func NextAddress() string {
	return fmt.Sprintf("0x%040x", nextID())
}

// CreateTestChain creates a chain with the given EVM chain ID, reusing an
// existing row when the ID was already seeded.
func CreateTestChain(t *testing.T, db *gorm.DB, chainID int) *models.Chain {
	t.Helper()

	chain := &models.Chain{ID: chainID, Name: fmt.Sprintf("chain-%d", chainID)}
	if err := db.FirstOrCreate(chain, models.Chain{ID: chainID}).Error; err != nil {
		t.Fatalf("failed to create test chain: %v", err)
	}
	return chain
}

// CreateTestToken creates a token with a unique contract address.
func CreateTestToken(t *testing.T, db *gorm.DB, chainID int, symbol string, decimals int) *models.Token {
	t.Helper()

	token := &models.Token{
		ID:       NextAddress(),
		ChainID:  chainID,
		Symbol:   symbol,
		Name:     symbol,
		Decimals: decimals,
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create test token: %v", err)
	}
	return token
}

// CreateTestTokenRisk creates a token risk record with the current time.
func CreateTestTokenRisk(t *testing.T, db *gorm.DB, tokenID string, score float64) *models.TokenRisk {
	t.Helper()
	return CreateTestTokenRiskAt(t, db, tokenID, score, time.Now().UTC())
}

// CreateTestTokenRiskAt creates a token risk record with an explicit
// creation time, for tests that exercise latest-record selection.
func CreateTestTokenRiskAt(t *testing.T, db *gorm.DB, tokenID string, score float64, createdAt time.Time) *models.TokenRisk {
	t.Helper()

	risk := &models.TokenRisk{TokenID: tokenID, RiskScore: score}
	risk.CreatedAt = createdAt
	if err := db.Create(risk).Error; err != nil {
		t.Fatalf("failed to create test token risk: %v", err)
	}
	return risk
}

// CreateTestProtocol creates a protocol with a unique slug.
func CreateTestProtocol(t *testing.T, db *gorm.DB, chainID int, name string) *models.Protocol {
	t.Helper()

	slug := fmt.Sprintf("%s-%d", name, nextID())
	protocol := &models.Protocol{
		Name:    name,
		ChainID: chainID,
		EnsoID:  &slug,
	}
	if err := db.Create(protocol).Error; err != nil {
		t.Fatalf("failed to create test protocol: %v", err)
	}
	return protocol
}

// CreateTestProtocolRisk creates a protocol risk record with the current time.
func CreateTestProtocolRisk(t *testing.T, db *gorm.DB, protocolID string, finalPRF float64, grade string) *models.ProtocolRisk {
	t.Helper()
	return CreateTestProtocolRiskAt(t, db, protocolID, finalPRF, grade, time.Now().UTC())
}

// CreateTestProtocolRiskAt creates a protocol risk record with an explicit
// creation time.
func CreateTestProtocolRiskAt(t *testing.T, db *gorm.DB, protocolID string, finalPRF float64, grade string, createdAt time.Time) *models.ProtocolRisk {
	t.Helper()

	risk := &models.ProtocolRisk{ProtocolID: protocolID, FinalPRF: finalPRF, Grade: grade}
	risk.CreatedAt = createdAt
	if err := db.Create(risk).Error; err != nil {
		t.Fatalf("failed to create test protocol risk: %v", err)
	}
	return risk
}

// CreateTestPool creates a pool with a unique receipt token address and the
// given underlying token addresses.
func CreateTestPool(t *testing.T, db *gorm.DB, chainID int, protocolID string, underlying ...string) *models.Pool {
	t.Helper()

	name := fmt.Sprintf("pool-%d", nextID())
	pool := &models.Pool{
		Name:             name,
		Symbol:           name,
		ChainID:          chainID,
		ProtocolID:       protocolID,
		ReceiptTokenID:   NextAddress(),
		UnderlyingTokens: underlying,
	}
	if err := db.Create(pool).Error; err != nil {
		t.Fatalf("failed to create test pool: %v", err)
	}
	return pool
}

// CreateTestInsight creates a pending insight for the given user and
// input token.
func CreateTestInsight(t *testing.T, db *gorm.DB, userAddress, tokenInID string) *models.Insight {
	t.Helper()

	insight := &models.Insight{
		Type:            models.InsightTypeTokenOpportunity,
		UserAddress:     userAddress,
		Status:          models.InsightStatusPending,
		TokenInID:       tokenInID,
		TokenInAmount:   "1000000",
		TokenInDecimals: 6,
		InsightShort:    fmt.Sprintf("insight-%d", nextID()),
	}
	if err := db.Create(insight).Error; err != nil {
		t.Fatalf("failed to create test insight: %v", err)
	}
	return insight
}
