package memory

import (
	"context"
	"sync"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradePerformance // keyed by trade_key
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.TradePerformance),
	}
}

// Insert adds a new OPEN trade. Returns ErrDuplicateKey if the trade key exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.TradePerformance) error {
	if t == nil || t.TradeKey == "" || t.TokenAddress == "" || t.RecommenderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeKey]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TradeKey] = &copy
	return nil
}

// GetLatestOpen retrieves the most recent open trade for the
// (token, recommender, simulation) key, by buy timestamp. Returns
// ErrNotFound if no open trade exists.
func (s *TradeStore) GetLatestOpen(_ context.Context, tokenAddress, recommenderID string, simulation bool) (*domain.TradePerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.TradePerformance
	for _, t := range s.data {
		if t.TokenAddress != tokenAddress || t.RecommenderID != recommenderID || t.Simulation != simulation {
			continue
		}
		if !t.Open() {
			continue
		}
		if latest == nil || t.BuyTimestamp > latest.BuyTimestamp {
			latest = t
		}
	}

	if latest == nil {
		return nil, storage.ErrNotFound
	}

	copy := *latest
	return &copy, nil
}

// CloseTrade applies sell-side fields to an open trade. Matches OPEN rows
// only, so closing an already-closed trade returns ErrNotFound.
func (s *TradeStore) CloseTrade(_ context.Context, tradeKey string, c *domain.TradeClose) error {
	if tradeKey == "" || c == nil || c.SellTimestamp == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[tradeKey]
	if !exists || !t.Open() {
		return storage.ErrNotFound
	}

	t.SellPrice = c.SellPrice
	t.SellTimestamp = c.SellTimestamp
	t.SellAmount = c.SellAmount
	t.ReceivedSOL = c.ReceivedSOL
	t.SellValueUSD = c.SellValueUSD
	t.SellMarketCap = c.SellMarketCap
	t.SellLiquidity = c.SellLiquidity
	t.ProfitUSD = c.ProfitUSD
	t.ProfitPercent = c.ProfitPercent
	t.MarketCapChange = c.MarketCapChange
	t.LiquidityChange = c.LiquidityChange
	t.RapidDump = c.RapidDump
	t.LastUpdated = c.SellTimestamp
	return nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
