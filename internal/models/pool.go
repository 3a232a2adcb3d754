package models

import (
	"gorm.io/datatypes"
)

// Pool represents a yield-bearing pool. Its risk score is always derived
// from the owning protocol's risk and the average risk of its underlying
// tokens; it is never stored on the row.
type Pool struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	Symbol  string `gorm:"not null" json:"symbol"`
	ChainID int    `gorm:"not null;index" json:"chain_id"`

	ProtocolID string `gorm:"type:uuid;not null;index" json:"protocol_id"`

	// ReceiptTokenID is the address of the token a wallet holds when it
	// has a position in this pool.
	ReceiptTokenID string `gorm:"not null;index" json:"receipt_token_id"`

	// UnderlyingTokens holds the ordered addresses of the pool's
	// constituent tokens.
	UnderlyingTokens datatypes.JSONSlice[string] `json:"underlying_tokens"`

	IsStablecoin bool    `gorm:"not null;default:false" json:"is_stablecoin"`
	PoolMeta     *string `json:"pool_meta,omitempty"`

	// Relationships
	Chain    Chain    `gorm:"foreignKey:ChainID" json:"-"`
	Protocol Protocol `gorm:"foreignKey:ProtocolID" json:"protocol"`
}
