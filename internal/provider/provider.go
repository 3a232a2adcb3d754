// Package provider contains HTTP clients for the external data providers
// the pipeline depends on: the wallet balance API and the market data API.
package provider

import "context"

// WalletBalance is a single raw balance entry for a wallet. Token is the
// held token's (or pool receipt token's) address; Amount is the raw
// integer amount as a string, which some upstreams emit in scientific
// notation; Price is the USD unit price as a string.
type WalletBalance struct {
	Token    string `json:"token"`
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
	Price    string `json:"price"`
}

// BalanceClient fetches a wallet's raw on-chain balances.
type BalanceClient interface {
	GetWalletBalances(ctx context.Context, chainID int, address string) ([]WalletBalance, error)
}

// MarketData is the per-token market snapshot used to derive risk scores.
type MarketData struct {
	ID                string  `json:"id"`
	MarketCap         float64 `json:"market_cap"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
	TotalVolume       float64 `json:"total_volume"`
	ATHChangePct      float64 `json:"ath_change_percentage"`
}

// MarketClient fetches current market data for a set of external
// price-feed identifiers.
type MarketClient interface {
	GetMarkets(ctx context.Context, ids []string) ([]MarketData, error)
}
