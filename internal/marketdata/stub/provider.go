// Package stub provides a deterministic in-memory market data provider for
// tests and the demo pipeline.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-trust-ledger/internal/marketdata"
)

// Provider is a deterministic in-memory marketdata.Provider.
type Provider struct {
	mu        sync.RWMutex
	snapshots map[string]*marketdata.TokenSnapshot
	balance   float64

	// Err, when set, is returned by Snapshot to exercise failure paths.
	Err error
	// BalanceErr, when set, is returned by WalletBalance.
	BalanceErr error
}

// NewProvider creates an empty stub provider.
func NewProvider() *Provider {
	return &Provider{snapshots: make(map[string]*marketdata.TokenSnapshot)}
}

// SetSnapshot registers the snapshot returned for a token address.
func (p *Provider) SetSnapshot(snap *marketdata.TokenSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots[snap.TokenAddress] = snap
}

// SetWalletBalance sets the balance returned by WalletBalance.
func (p *Provider) SetWalletBalance(sol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance = sol
}

// Snapshot returns the registered snapshot for a token address.
func (p *Provider) Snapshot(_ context.Context, tokenAddress string) (*marketdata.TokenSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.Err != nil {
		return nil, p.Err
	}
	snap, exists := p.snapshots[tokenAddress]
	if !exists {
		return nil, fmt.Errorf("stub: no snapshot for %s", tokenAddress)
	}
	copy := *snap
	return &copy, nil
}

// WalletBalance returns the configured balance.
func (p *Provider) WalletBalance(_ context.Context) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.BalanceErr != nil {
		return 0, p.BalanceErr
	}
	return p.balance, nil
}

var _ marketdata.Provider = (*Provider)(nil)
