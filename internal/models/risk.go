package models

// PoolWithRisk is a pool annotated with its derived combined risk score.
type PoolWithRisk struct {
	Pool
	CombinedRiskScore float64 `json:"combined_risk_score"`
}

// TokenWithRisk is a token annotated with its current risk score.
type TokenWithRisk struct {
	Token
	RiskScore float64 `json:"risk_score"`
}

// PoolRiskBreakdown exposes a pool's combined score alongside the
// components it was blended from.
type PoolRiskBreakdown struct {
	PoolID        string   `json:"pool_id"`
	RiskScore     float64  `json:"risk_score"`
	Grade         string   `json:"grade"`
	ProtocolRisk  float64  `json:"protocol_risk"`
	ProtocolGrade string   `json:"protocol_grade"`
	TokenRisk     *float64 `json:"token_risk,omitempty"`
}
