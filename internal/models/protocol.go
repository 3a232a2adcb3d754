package models

import (
	"gorm.io/datatypes"
)

// Protocol represents a DeFi protocol that operates pools on a chain.
type Protocol struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	ChainID int    `gorm:"not null;index" json:"chain_id"`

	// External ecosystem identifiers. EnsoID doubles as the protocol slug
	// used in insight rows and engine payloads.
	EnsoID      *string `gorm:"uniqueIndex" json:"enso_id,omitempty"`
	DefillamaID *string `json:"defillama_id,omitempty"`

	LogosURI datatypes.JSONSlice[string] `json:"logos_uri,omitempty"`

	// Relationships
	Chain Chain          `gorm:"foreignKey:ChainID" json:"-"`
	Risks []ProtocolRisk `gorm:"foreignKey:ProtocolID" json:"risks,omitempty"`
	Pools []Pool         `gorm:"foreignKey:ProtocolID" json:"pools,omitempty"`
}

// Slug returns the protocol's external slug, falling back to its name.
func (p *Protocol) Slug() string {
	if p.EnsoID != nil && *p.EnsoID != "" {
		return *p.EnsoID
	}
	return p.Name
}

// ProtocolRisk is an append-only risk record for a protocol. FinalPRF is
// the protocol risk factor on the shared 0-5 scale; the most recently
// created row is the current risk.
type ProtocolRisk struct {
	Base
	ProtocolID string  `gorm:"type:uuid;not null;index:idx_protocol_risks_current,priority:1" json:"protocol_id"`
	FinalPRF   float64 `gorm:"not null" json:"final_prf"`
	Grade      string  `json:"grade,omitempty"`

	// Relationships
	Protocol Protocol `gorm:"foreignKey:ProtocolID" json:"-"`
}
