package models

// PortfolioSnapshot is the valued, risk-scored breakdown of a wallet at a
// point in time. It is computed per request and never persisted.
type PortfolioSnapshot struct {
	UserAddress string            `json:"user_address"`
	Tokens      []TokenHolding    `json:"tokens"`
	Positions   []PositionHolding `json:"positions"`
	Total       float64           `json:"total"`
	RiskScore   float64           `json:"risk_score"`
	RiskGrade   string            `json:"risk_grade"`
}

// TokenHolding is a plain token balance valued in USD.
type TokenHolding struct {
	Token      Token   `json:"token"`
	Amount     string  `json:"amount"`
	RawAmount  string  `json:"raw_amount"`
	Decimals   int     `json:"decimals"`
	Price      float64 `json:"price"`
	UsdValue   float64 `json:"usd_value"`
	Percentage float64 `json:"percentage"`
	RiskScore  float64 `json:"risk_score"`
}

// PositionHolding is a DeFi position, identified by the wallet holding a
// pool's receipt token. Its risk score is the owning protocol's current
// risk, not the pool's blended score.
type PositionHolding struct {
	Pool       Pool    `json:"pool"`
	Amount     string  `json:"amount"`
	RawAmount  string  `json:"raw_amount"`
	Decimals   int     `json:"decimals"`
	Price      float64 `json:"price"`
	UsdValue   float64 `json:"usd_value"`
	Percentage float64 `json:"percentage"`
	RiskScore  float64 `json:"risk_score"`
}
