package models

import "time"

// InsightType classifies what a recommendation proposes.
type InsightType string

const (
	InsightTypeYieldPool        InsightType = "YIELD_POOL"
	InsightTypeTokenOpportunity InsightType = "TOKEN_OPPORTUNITY"
)

// InsightStatus is the lifecycle state of an insight. PENDING transitions
// to EXECUTED or STALE; both are terminal.
type InsightStatus string

const (
	InsightStatusPending  InsightStatus = "PENDING"
	InsightStatusExecuted InsightStatus = "EXECUTED"
	InsightStatusStale    InsightStatus = "STALE"
)

// Insight is a persisted, actionable recommendation for a user. Rows are
// never deleted; they only move through the status lifecycle, so the table
// doubles as an audit trail of everything the engine proposed.
type Insight struct {
	Base
	Type        InsightType   `gorm:"not null" json:"type"`
	UserAddress string        `gorm:"not null;index:idx_insights_user_status,priority:1" json:"user_address"`
	Status      InsightStatus `gorm:"not null;index:idx_insights_user_status,priority:2" json:"status"`

	// Input side: the token being spent, with its human-readable amount.
	TokenInID       string `gorm:"not null" json:"token_in_id"`
	TokenInAmount   string `gorm:"not null" json:"token_in_amount"`
	TokenInDecimals int    `gorm:"not null" json:"token_in_decimals"`

	// Output side: exactly one of PoolOutID (YIELD_POOL) or TokenOutID
	// (TOKEN_OPPORTUNITY) is set, matching Type.
	PoolOutID  *string `gorm:"type:uuid" json:"pool_out_id,omitempty"`
	TokenOutID *string `json:"token_out_id,omitempty"`

	InsightShort    string `gorm:"not null" json:"insight_short"`
	InsightDetailed string `json:"insight_detailed"`
	APICall         string `gorm:"column:api_call" json:"api_call"`
	ProtocolSlug    string `json:"protocol_slug"`

	// Populated once the user acts on the recommendation.
	ExecutionDate   *time.Time `json:"execution_date,omitempty"`
	ExecutionTxHash *string    `json:"execution_tx_hash,omitempty"`

	// Relationships
	TokenIn  Token  `gorm:"foreignKey:TokenInID" json:"token_in"`
	TokenOut *Token `gorm:"foreignKey:TokenOutID" json:"token_out,omitempty"`
	PoolOut  *Pool  `gorm:"foreignKey:PoolOutID" json:"pool_out,omitempty"`
}
