package models

import (
	"time"

	"gorm.io/datatypes"
)

// Token represents an ERC-20 token known to the platform. The primary key
// is the token's chain-scoped contract address, stored lower-cased.
type Token struct {
	ID        string                      `gorm:"primaryKey" json:"id"` // contract address
	ChainID   int                         `gorm:"not null;index" json:"chain_id"`
	Symbol    string                      `gorm:"not null" json:"symbol"`
	Name      string                      `gorm:"not null" json:"name"`
	Decimals  int                         `gorm:"not null" json:"decimals"`
	LogosURI  datatypes.JSONSlice[string] `json:"logos_uri,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`

	// CoingeckoID links the token to its external price-feed identifier.
	// Tokens without one are skipped by the risk refresh job.
	CoingeckoID *string `gorm:"index" json:"coingecko_id,omitempty"`

	// Relationships
	Chain Chain       `gorm:"foreignKey:ChainID" json:"-"`
	Risks []TokenRisk `gorm:"foreignKey:TokenID" json:"risks,omitempty"`
}

// TokenRisk is an append-only risk record for a token. Records are never
// updated in place; the most recently created row is the current risk.
type TokenRisk struct {
	Base
	TokenID   string  `gorm:"not null;index:idx_token_risks_current,priority:1" json:"token_id"`
	RiskScore float64 `gorm:"not null" json:"risk_score"`

	// Relationships
	Token Token `gorm:"foreignKey:TokenID" json:"-"`
}
