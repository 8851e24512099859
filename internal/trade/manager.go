// Package trade manages the buy/sell lifecycle of trade performance
// records and their derived financial metrics.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/idhash"
	"solana-trust-ledger/internal/marketdata"
	"solana-trust-ledger/internal/observability"
	"solana-trust-ledger/internal/scoring"
	"solana-trust-ledger/internal/solana"
	"solana-trust-ledger/internal/storage"
)

// OutcomeSink receives the token snapshot of every closed trade. The
// recommender metrics updater implements it.
type OutcomeSink interface {
	ApplyTradeOutcome(ctx context.Context, recommenderID string, tp *domain.TokenPerformance) error
}

// Syncer replicates trade-open events without blocking the caller.
type Syncer interface {
	Dispatch(trade *domain.TradePerformance)
}

// Watcher runs a detached monitoring task for a token.
type Watcher interface {
	Watch(tokenAddress string)
}

// Options configures a Manager.
type Options struct {
	Trades          storage.TradeStore
	Recommendations storage.RecommendationStore
	Tokens          storage.TokenPerformanceStore
	Balances        storage.BalanceStore
	Archive         storage.SnapshotArchive // optional, best-effort
	Provider        marketdata.Provider
	Marker          MarkerGenerator
	Syncer          Syncer                 // optional
	Watcher         Watcher                // optional
	Outcome         OutcomeSink
	Metrics         *observability.Metrics // optional
	Logger          *log.Logger

	// Now is overridable for deterministic tests.
	Now func() time.Time
}

// Manager opens and closes trades, computing derived P&L and market
// deltas, and fans out detached monitoring and backend sync work.
type Manager struct {
	opts  Options
	guard *keyLock
}

// NewManager creates a trade lifecycle manager.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Marker == nil {
		opts.Marker = NewRandMarker(time.Now().UnixNano())
	}
	return &Manager{opts: opts, guard: newKeyLock()}
}

// Open records a buy: it snapshots the market, persists an OPEN trade, a
// new recommendation and an updated token performance row, and dispatches
// detached monitoring and backend sync. Snapshot failures propagate;
// scores are never computed on partial data.
func (m *Manager) Open(ctx context.Context, tokenAddress, recommenderID string, buyAmount float64, simulation bool) (*domain.TradePerformance, error) {
	if err := solana.ValidateAddress(tokenAddress); err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}

	snap, err := m.snapshot(ctx, tokenAddress)
	if err != nil {
		m.recordOpenError()
		return nil, err
	}

	now := m.opts.Now().UnixMilli()
	buyValueUSD := buyAmount * snap.Price
	buySOL := 0.0
	if snap.SOLPrice != 0 {
		buySOL = buyValueUSD / snap.SOLPrice
	}

	t := &domain.TradePerformance{
		TradeKey:      idhash.ComputeTradeKey(tokenAddress, recommenderID, now, simulation),
		TokenAddress:  tokenAddress,
		RecommenderID: recommenderID,
		BuyPrice:      snap.Price,
		BuyTimestamp:  now,
		BuyAmount:     buyAmount,
		BuySOL:        buySOL,
		BuyValueUSD:   buyValueUSD,
		BuyMarketCap:  snap.MarketCap,
		BuyLiquidity:  snap.Liquidity,
		Simulation:    simulation,
		LastUpdated:   now,
	}

	if err := m.opts.Trades.Insert(ctx, t); err != nil {
		m.recordOpenError()
		return nil, fmt.Errorf("insert trade: %w", err)
	}

	rec := &domain.TokenRecommendation{
		ID:               idhash.ComputeRecommendationID(tokenAddress, recommenderID, now),
		RecommenderID:    recommenderID,
		TokenAddress:     tokenAddress,
		Timestamp:        now,
		InitialMarketCap: snap.MarketCap,
		InitialLiquidity: snap.Liquidity,
		InitialPrice:     snap.Price,
	}
	if err := m.opts.Recommendations.Insert(ctx, rec); err != nil {
		m.recordOpenError()
		return nil, fmt.Errorf("insert recommendation: %w", err)
	}

	if err := m.upsertTokenPerformance(ctx, snap, now); err != nil {
		m.recordOpenError()
		return nil, err
	}

	if simulation {
		if err := m.applySimulatedFill(ctx, t, domain.TransactionTypeBuy, buyAmount, snap.Price, now); err != nil {
			m.recordOpenError()
			return nil, err
		}
	}

	// Detached work: neither monitoring nor sync may block or fail the
	// lifecycle call.
	if m.opts.Watcher != nil {
		m.opts.Watcher.Watch(tokenAddress)
	}
	if m.opts.Syncer != nil {
		m.opts.Syncer.Dispatch(t)
	}

	if m.opts.Metrics != nil {
		m.opts.Metrics.TradesOpened.WithLabelValues(modeLabel(simulation)).Inc()
	}
	return t, nil
}

// Close locates the latest open trade for the key and records the sell.
// There is no trade to fabricate: a close without a prior open fails with
// storage.ErrNotFound.
func (m *Manager) Close(ctx context.Context, tokenAddress, recommenderID string, sellTimestamp int64, sellAmount float64, sellRecommenderID string, simulation bool) (*domain.TradePerformance, error) {
	release := m.guard.acquire(tupleKey(tokenAddress, recommenderID, simulation))
	defer release()

	t, err := m.opts.Trades.GetLatestOpen(ctx, tokenAddress, recommenderID, simulation)
	if err != nil {
		m.recordCloseError()
		return nil, fmt.Errorf("locate open trade: %w", err)
	}

	snap, err := m.snapshot(ctx, tokenAddress)
	if err != nil {
		m.recordCloseError()
		return nil, err
	}

	sellValueUSD := sellAmount * snap.Price
	receivedSOL := 0.0
	if snap.SOLPrice != 0 {
		receivedSOL = sellValueUSD / snap.SOLPrice
	}
	profitUSD := sellValueUSD - t.BuyValueUSD
	// Zero buy value leaves profit percent at 0 rather than faulting.
	profitPercent := 0.0
	if t.BuyValueUSD != 0 {
		profitPercent = profitUSD / t.BuyValueUSD * 100
	}

	close := &domain.TradeClose{
		SellPrice:       snap.Price,
		SellTimestamp:   sellTimestamp,
		SellAmount:      sellAmount,
		ReceivedSOL:     receivedSOL,
		SellValueUSD:    sellValueUSD,
		SellMarketCap:   snap.MarketCap,
		SellLiquidity:   snap.Liquidity,
		ProfitUSD:       profitUSD,
		ProfitPercent:   profitPercent,
		MarketCapChange: snap.MarketCap - t.BuyMarketCap,
		LiquidityChange: snap.Liquidity - t.BuyLiquidity,
		RapidDump:       scoring.IsRapidDump(snap),
	}

	if err := m.opts.Trades.CloseTrade(ctx, t.TradeKey, close); err != nil {
		m.recordCloseError()
		return nil, fmt.Errorf("close trade: %w", err)
	}

	if simulation {
		if err := m.applySimulatedFill(ctx, t, domain.TransactionTypeSell, sellAmount, snap.Price, sellTimestamp); err != nil {
			m.recordCloseError()
			return nil, err
		}
	}

	if err := m.upsertTokenPerformance(ctx, snap, sellTimestamp); err != nil {
		m.recordCloseError()
		return nil, err
	}

	tp, err := m.opts.Tokens.Get(ctx, tokenAddress)
	if err != nil {
		m.recordCloseError()
		return nil, fmt.Errorf("load token performance: %w", err)
	}
	if err := m.opts.Outcome.ApplyTradeOutcome(ctx, t.RecommenderID, tp); err != nil {
		m.recordCloseError()
		return nil, fmt.Errorf("apply trade outcome: %w", err)
	}

	m.opts.Logger.Printf("trade: closed %s for %s (sell recommended by %s, profit %.2f%%)",
		t.TradeKey, tokenAddress, sellRecommenderID, profitPercent)
	if m.opts.Metrics != nil {
		m.opts.Metrics.TradesClosed.WithLabelValues(modeLabel(simulation)).Inc()
	}

	closed := *t
	closed.SellPrice = close.SellPrice
	closed.SellTimestamp = close.SellTimestamp
	closed.SellAmount = close.SellAmount
	closed.ReceivedSOL = close.ReceivedSOL
	closed.SellValueUSD = close.SellValueUSD
	closed.SellMarketCap = close.SellMarketCap
	closed.SellLiquidity = close.SellLiquidity
	closed.ProfitUSD = close.ProfitUSD
	closed.ProfitPercent = close.ProfitPercent
	closed.MarketCapChange = close.MarketCapChange
	closed.LiquidityChange = close.LiquidityChange
	closed.RapidDump = close.RapidDump
	closed.LastUpdated = close.SellTimestamp
	return &closed, nil
}

// snapshot fetches market data, recording fetch latency and errors.
func (m *Manager) snapshot(ctx context.Context, tokenAddress string) (*marketdata.TokenSnapshot, error) {
	start := time.Now()
	snap, err := m.opts.Provider.Snapshot(ctx, tokenAddress)
	if m.opts.Metrics != nil {
		m.opts.Metrics.SnapshotFetchLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			m.opts.Metrics.SnapshotFetchErrors.Inc()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch market snapshot: %w", err)
	}
	return snap, nil
}

// upsertTokenPerformance refreshes the token's stored snapshot from market
// data and mirrors it to the analytics archive best-effort.
func (m *Manager) upsertTokenPerformance(ctx context.Context, snap *marketdata.TokenSnapshot, now int64) error {
	validationTrust, err := m.opts.Tokens.ValidationTrust(ctx, snap.TokenAddress)
	if err != nil {
		return fmt.Errorf("compute validation trust: %w", err)
	}
	balance, err := m.opts.Balances.GetBalance(ctx, snap.TokenAddress)
	if err != nil {
		// Balance is an auxiliary input, not correctness-critical.
		m.opts.Logger.Printf("trade: balance lookup for %s failed, using 0: %v", snap.TokenAddress, err)
		balance = 0
	}

	initialMarketCap := snap.MarketCap
	if prev, err := m.opts.Tokens.Get(ctx, snap.TokenAddress); err == nil {
		initialMarketCap = prev.InitialMarketCap
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load token performance: %w", err)
	}

	tp := &domain.TokenPerformance{
		TokenAddress:       snap.TokenAddress,
		Symbol:             snap.Symbol,
		PriceChange24h:     snap.PriceChange24h,
		VolumeChange24h:    snap.Volume24hChangePct,
		TradeChange24h:     snap.Trade24hChangePct,
		LiquidityChange24h: snap.LiquidityChange24hPct,
		HolderChange24h:    snap.HolderChange24hPct,
		Liquidity:          snap.Liquidity,
		MarketCapChange24h: snap.MarketCapChange24hPct,
		RugPull:            false,
		IsScam:             snap.IsScam,
		SustainedGrowth:    scoring.SustainedGrowth(snap),
		RapidDump:          scoring.IsRapidDump(snap),
		SuspiciousVolume:   scoring.SuspiciousVolume(snap),
		ValidationTrust:    validationTrust,
		Balance:            balance,
		InitialMarketCap:   initialMarketCap,
		LastUpdated:        now,
	}

	if err := m.opts.Tokens.Upsert(ctx, tp); err != nil {
		return fmt.Errorf("upsert token performance: %w", err)
	}

	if m.opts.Archive != nil {
		if err := m.opts.Archive.Append(ctx, tp); err != nil {
			m.opts.Logger.Printf("trade: archive append for %s failed: %v", snap.TokenAddress, err)
		}
	}
	return nil
}

// applySimulatedFill adjusts the simulated token balance and appends a
// synthetic transaction with a generated signature.
func (m *Manager) applySimulatedFill(ctx context.Context, t *domain.TradePerformance, txType string, amount, price float64, now int64) error {
	balance, err := m.opts.Balances.GetBalance(ctx, t.TokenAddress)
	if err != nil {
		return fmt.Errorf("get simulated balance: %w", err)
	}
	if txType == domain.TransactionTypeBuy {
		balance += amount
	} else {
		balance -= amount
	}
	if err := m.opts.Balances.SetBalance(ctx, t.TokenAddress, balance); err != nil {
		return fmt.Errorf("set simulated balance: %w", err)
	}
	if m.opts.Metrics != nil {
		m.opts.Metrics.SimulatedBalance.WithLabelValues(t.TokenAddress).Set(balance)
	}

	tx := &domain.Transaction{
		TokenAddress:    t.TokenAddress,
		TransactionHash: m.opts.Marker.TxSignature(),
		Type:            txType,
		Amount:          amount,
		Price:           price,
		IsSimulation:    true,
		Timestamp:       now,
	}
	if err := m.opts.Balances.AddTransaction(ctx, tx); err != nil {
		return fmt.Errorf("append simulated transaction: %w", err)
	}
	return nil
}

func (m *Manager) recordOpenError() {
	if m.opts.Metrics != nil {
		m.opts.Metrics.TradeOpenErrors.Inc()
	}
}

func (m *Manager) recordCloseError() {
	if m.opts.Metrics != nil {
		m.opts.Metrics.TradeCloseErrors.Inc()
	}
}

func modeLabel(simulation bool) string {
	if simulation {
		return "sim"
	}
	return "real"
}
