package models

import "time"

// Chain represents a supported blockchain network. The numeric chain ID is
// the EVM chain identifier (e.g. 146 for Sonic).
type Chain struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
