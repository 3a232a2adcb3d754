package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nuvolari/internal/testutil"
)

func TestEnsoClient_GetWalletBalances(t *testing.T) {
	t.Run("decodes_balances", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]WalletBalance{
				{Token: "0xtoken", Amount: "2.5e21", Decimals: 18, Price: "0.5"},
			})
		}))
		defer server.Close()

		client := NewEnsoClient(server.URL, "test-key", http.DefaultClient)
		balances, err := client.GetWalletBalances(context.Background(), 146, "0xwallet")
		testutil.AssertNoError(t, err)

		if gotPath != "/wallet/balances" {
			t.Errorf("unexpected path %s", gotPath)
		}
		if gotAuth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", gotAuth)
		}
		if got := gotQuery["chainId"]; len(got) != 1 || got[0] != "146" {
			t.Errorf("unexpected chainId query %v", got)
		}
		if got := gotQuery["eoaAddress"]; len(got) != 1 || got[0] != "0xwallet" {
			t.Errorf("unexpected eoaAddress query %v", got)
		}
		if got := gotQuery["useEoa"]; len(got) != 1 || got[0] != "true" {
			t.Errorf("unexpected useEoa query %v", got)
		}

		if len(balances) != 1 {
			t.Fatalf("expected 1 balance, got %d", len(balances))
		}
		if balances[0].Amount != "2.5e21" || balances[0].Decimals != 18 {
			t.Errorf("unexpected balance %+v", balances[0])
		}
	})

	t.Run("upstream_error_status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewEnsoClient(server.URL, "", http.DefaultClient)
		_, err := client.GetWalletBalances(context.Background(), 146, "0xwallet")
		testutil.AssertAppError(t, err, "UPSTREAM_UNAVAILABLE")
	})

	t.Run("malformed_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewEnsoClient(server.URL, "", http.DefaultClient)
		_, err := client.GetWalletBalances(context.Background(), 146, "0xwallet")
		testutil.AssertAppError(t, err, "UPSTREAM_UNAVAILABLE")
	})
}
