package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "nuvolari/internal/errors"
)

// CoinGeckoClient fetches market data from a CoinGecko-compatible API.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko market data client. The API
// key is optional; when set it is sent as a demo key header for higher
// rate limits.
func NewCoinGeckoClient(baseURL, apiKey string, httpClient *http.Client) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// GetMarkets fetches the market snapshot for the given CoinGecko IDs in a
// single request.
func (c *CoinGeckoClient) GetMarkets(ctx context.Context, ids []string) ([]MarketData, error) {
	if len(ids) == 0 {
		return []MarketData{}, nil
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("ids", strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/markets?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("creating markets request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("fetching markets: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable,
			fmt.Errorf("fetching markets: unexpected status %d", resp.StatusCode))
	}

	var markets []MarketData
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("decoding markets response: %w", err))
	}
	return markets, nil
}
