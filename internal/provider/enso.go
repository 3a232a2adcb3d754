package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "nuvolari/internal/errors"
)

// EnsoClient fetches wallet balances from an Enso-compatible API.
type EnsoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewEnsoClient creates a new Enso balance client.
func NewEnsoClient(baseURL, apiKey string, httpClient *http.Client) *EnsoClient {
	return &EnsoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// GetWalletBalances fetches the raw balances held by address on the given
// chain, including pool receipt tokens.
func (c *EnsoClient) GetWalletBalances(ctx context.Context, chainID int, address string) ([]WalletBalance, error) {
	q := url.Values{}
	q.Set("chainId", strconv.Itoa(chainID))
	q.Set("eoaAddress", address)
	q.Set("useEoa", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wallet/balances?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("creating balances request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("fetching balances: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable,
			fmt.Errorf("fetching balances: unexpected status %d", resp.StatusCode))
	}

	var balances []WalletBalance
	if err := json.NewDecoder(resp.Body).Decode(&balances); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("decoding balances response: %w", err))
	}
	return balances, nil
}
