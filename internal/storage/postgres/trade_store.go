package postgres

import (
	"context"
	"fmt"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new OPEN trade. Returns ErrDuplicateKey if the trade key exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.TradePerformance) error {
	if t == nil || t.TradeKey == "" || t.TokenAddress == "" || t.RecommenderID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_performance (
			trade_key, token_address, recommender_id,
			buy_price, buy_timestamp, buy_amount, buy_sol, buy_value_usd,
			buy_market_cap, buy_liquidity,
			sell_price, sell_timestamp, sell_amount, received_sol, sell_value_usd,
			sell_market_cap, sell_liquidity,
			profit_usd, profit_percent, market_cap_change, liquidity_change,
			rapid_dump, simulation, last_updated
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8,
			$9, $10,
			$11, $12, $13, $14, $15,
			$16, $17,
			$18, $19, $20, $21,
			$22, $23, $24
		)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeKey, t.TokenAddress, t.RecommenderID,
		t.BuyPrice, t.BuyTimestamp, t.BuyAmount, t.BuySOL, t.BuyValueUSD,
		t.BuyMarketCap, t.BuyLiquidity,
		t.SellPrice, t.SellTimestamp, t.SellAmount, t.ReceivedSOL, t.SellValueUSD,
		t.SellMarketCap, t.SellLiquidity,
		t.ProfitUSD, t.ProfitPercent, t.MarketCapChange, t.LiquidityChange,
		t.RapidDump, t.Simulation, t.LastUpdated,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetLatestOpen retrieves the most recent open trade for the
// (token, recommender, simulation) key, by buy timestamp.
func (s *TradeStore) GetLatestOpen(ctx context.Context, tokenAddress, recommenderID string, simulation bool) (*domain.TradePerformance, error) {
	query := `
		SELECT
			trade_key, token_address, recommender_id,
			buy_price, buy_timestamp, buy_amount, buy_sol, buy_value_usd,
			buy_market_cap, buy_liquidity,
			sell_price, sell_timestamp, sell_amount, received_sol, sell_value_usd,
			sell_market_cap, sell_liquidity,
			profit_usd, profit_percent, market_cap_change, liquidity_change,
			rapid_dump, simulation, last_updated
		FROM trade_performance
		WHERE token_address = $1 AND recommender_id = $2 AND simulation = $3
		  AND sell_timestamp = 0
		ORDER BY buy_timestamp DESC, trade_key ASC
		LIMIT 1
	`

	var t domain.TradePerformance
	err := s.pool.QueryRow(ctx, query, tokenAddress, recommenderID, simulation).Scan(
		&t.TradeKey, &t.TokenAddress, &t.RecommenderID,
		&t.BuyPrice, &t.BuyTimestamp, &t.BuyAmount, &t.BuySOL, &t.BuyValueUSD,
		&t.BuyMarketCap, &t.BuyLiquidity,
		&t.SellPrice, &t.SellTimestamp, &t.SellAmount, &t.ReceivedSOL, &t.SellValueUSD,
		&t.SellMarketCap, &t.SellLiquidity,
		&t.ProfitUSD, &t.ProfitPercent, &t.MarketCapChange, &t.LiquidityChange,
		&t.RapidDump, &t.Simulation, &t.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest open trade: %w", err)
	}
	return &t, nil
}

// CloseTrade applies sell-side fields to an open trade. Matches OPEN rows
// only, so closing an already-closed trade returns ErrNotFound.
func (s *TradeStore) CloseTrade(ctx context.Context, tradeKey string, c *domain.TradeClose) error {
	if tradeKey == "" || c == nil || c.SellTimestamp == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE trade_performance SET
			sell_price        = $2,
			sell_timestamp    = $3,
			sell_amount       = $4,
			received_sol      = $5,
			sell_value_usd    = $6,
			sell_market_cap   = $7,
			sell_liquidity    = $8,
			profit_usd        = $9,
			profit_percent    = $10,
			market_cap_change = $11,
			liquidity_change  = $12,
			rapid_dump        = $13,
			last_updated      = $3
		WHERE trade_key = $1 AND sell_timestamp = 0
	`

	tag, err := s.pool.Exec(ctx, query,
		tradeKey,
		c.SellPrice, c.SellTimestamp, c.SellAmount, c.ReceivedSOL, c.SellValueUSD,
		c.SellMarketCap, c.SellLiquidity,
		c.ProfitUSD, c.ProfitPercent, c.MarketCapChange, c.LiquidityChange,
		c.RapidDump,
	)
	if err != nil {
		return fmt.Errorf("close trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
