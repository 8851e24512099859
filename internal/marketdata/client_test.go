package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solana-trust-ledger/internal/solana"
)

// On-curve key (base58 of 32 zero bytes) usable as a wallet fixture.
const testWallet = "11111111111111111111111111111111"

func newTestServer(t *testing.T, overviewBody string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token/tok-1/overview", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("X-API-KEY = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(overviewBody))
	})
	mux.HandleFunc("/price/sol", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": 150.0}`))
	})
	mux.HandleFunc("/wallet/"+testWallet+"/balance", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sol": 2.5}`))
	})
	return httptest.NewServer(mux)
}

func TestClientSnapshot(t *testing.T) {
	srv := newTestServer(t, `{
		"symbol": "TOK",
		"price": 1.5,
		"priceChange24hPercent": 25,
		"volume24h": 1000,
		"uniqueWallet24h": 600,
		"isScam": true,
		"pairs": [{"liquidity": {"usd": 50000}, "marketCap": 750000}]
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "wallet-1")

	snap, err := c.Snapshot(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Symbol != "TOK" {
		t.Errorf("Symbol = %q, want TOK", snap.Symbol)
	}
	if snap.Price != 1.5 {
		t.Errorf("Price = %f, want 1.5", snap.Price)
	}
	if snap.SOLPrice != 150.0 {
		t.Errorf("SOLPrice = %f, want 150", snap.SOLPrice)
	}
	if snap.Liquidity != 50000 {
		t.Errorf("Liquidity = %f, want 50000", snap.Liquidity)
	}
	if snap.MarketCap != 750000 {
		t.Errorf("MarketCap = %f, want 750000", snap.MarketCap)
	}
	if !snap.IsScam {
		t.Error("IsScam = false, want true")
	}
}

func TestClientSnapshotNoPairs(t *testing.T) {
	srv := newTestServer(t, `{"symbol": "TOK", "price": 1.5}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "wallet-1")

	snap, err := c.Snapshot(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Liquidity != 0 || snap.MarketCap != 0 {
		t.Errorf("Liquidity/MarketCap = %f/%f, want zeros without pairs", snap.Liquidity, snap.MarketCap)
	}
}

func TestClientSnapshotErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "wallet-1")

	if _, err := c.Snapshot(context.Background(), "tok-1"); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestClientWalletBalance(t *testing.T) {
	srv := newTestServer(t, `{}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testWallet)

	balance, err := c.WalletBalance(context.Background())
	if err != nil {
		t.Fatalf("WalletBalance: %v", err)
	}
	if balance != 2.5 {
		t.Errorf("balance = %f, want 2.5", balance)
	}
}

func TestClientWalletBalanceOffCurveWallet(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.Write([]byte(`{"sol": 2.5}`))
	}))
	defer srv.Close()

	// Valid 32-byte key that is not on the ed25519 curve, like a PDA.
	c := NewClient(srv.URL, "test-key", "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")

	if _, err := c.WalletBalance(context.Background()); !errors.Is(err, solana.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress for off-curve wallet, got %v", err)
	}
	if requests != 0 {
		t.Errorf("requests = %d, want 0 for rejected wallet", requests)
	}
}
