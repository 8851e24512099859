// Package main runs the trust ledger daemon: the trade lifecycle API,
// detached token monitoring, backend sync and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-trust-ledger/internal/backendsync"
	"solana-trust-ledger/internal/config"
	"solana-trust-ledger/internal/marketdata"
	"solana-trust-ledger/internal/monitor"
	"solana-trust-ledger/internal/observability"
	"solana-trust-ledger/internal/ranking"
	"solana-trust-ledger/internal/recommender"
	"solana-trust-ledger/internal/solana"
	"solana-trust-ledger/internal/storage"
	chstore "solana-trust-ledger/internal/storage/clickhouse"
	"solana-trust-ledger/internal/storage/memory"
	"solana-trust-ledger/internal/storage/migrations"
	pgstore "solana-trust-ledger/internal/storage/postgres"
	"solana-trust-ledger/internal/trade"
)

// coreStores holds the persistent gateways the daemon wires together.
type coreStores struct {
	recommenders    storage.RecommenderStore
	tokens          storage.TokenPerformanceStore
	recommendations storage.RecommendationStore
	trades          storage.TradeStore
	balances        storage.BalanceStore
	archive         storage.SnapshotArchive // nil without ClickHouse
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to YAML config file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	addr := flag.String("addr", ":8080", "HTTP API listen address")
	flag.Parse()

	logger := log.New(os.Stdout, "[trustd] ", log.LstdFlags|log.Lshortfile)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			logger.Fatalf("Failed to load config: %v", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("trust_ledger")

	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Seed the simulated funding account once, if configured.
	if cfg.Simulation.SimulatedOwnerAddr != "" {
		bal, err := stores.balances.GetBalance(ctx, cfg.Simulation.SimulatedOwnerAddr)
		if err != nil {
			logger.Fatalf("Failed to read simulated balance: %v", err)
		}
		if bal == 0 {
			if err := stores.balances.SetBalance(ctx, cfg.Simulation.SimulatedOwnerAddr, cfg.Simulation.InitialBalance); err != nil {
				logger.Fatalf("Failed to seed simulated balance: %v", err)
			}
		}
	}

	provider := marketdata.NewClient(
		cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.MarketData.WalletAddress,
		marketdata.WithTimeout(cfg.MarketData.Timeout),
	)

	var stream marketdata.PriceStream
	if cfg.MarketData.StreamEndpoint != "" {
		stream, err = marketdata.NewWSStream(ctx, cfg.MarketData.StreamEndpoint, nil)
		if err != nil {
			// Poll fallback covers monitoring; the feed is not mandatory.
			logger.Printf("Price stream unavailable, monitoring will poll: %v", err)
			stream = nil
		}
	}

	watcher := monitor.New(stream, provider, stores.tokens, logger)
	watcher.WatchDuration = cfg.Monitor.WatchDuration
	watcher.PollInterval = cfg.Monitor.PollInterval
	defer watcher.Stop()

	syncer := backendsync.NewClient(cfg.Backend.URL, cfg.Backend.AuthToken,
		backendsync.WithTimeout(cfg.Backend.Timeout),
		backendsync.WithMaxAttempts(cfg.Backend.MaxAttempts),
		backendsync.WithRetryDelay(cfg.Backend.RetryDelay),
		backendsync.WithMetrics(metrics),
		backendsync.WithLogger(logger),
	)

	updater := recommender.NewUpdater(stores.recommenders, provider, metrics, logger)
	updater.ConfidenceDivisor = cfg.Simulation.ConfidenceDivisor

	manager := trade.NewManager(trade.Options{
		Trades:          stores.trades,
		Recommendations: stores.recommendations,
		Tokens:          stores.tokens,
		Balances:        stores.balances,
		Archive:         stores.archive,
		Provider:        provider,
		Syncer:          syncer,
		Watcher:         watcher,
		Outcome:         updater,
		Metrics:         metrics,
		Logger:          logger,
	})

	aggregator := ranking.NewAggregator(stores.recommendations, stores.tokens, stores.recommenders, metrics)

	api := &apiServer{
		manager:      manager,
		aggregator:   aggregator,
		recommenders: stores.recommenders,
		logger:       logger,
	}

	go serveMetrics(cfg.Metrics.Addr, logger)

	httpServer := &http.Server{Addr: *addr, Handler: api.routes()}
	go func() {
		logger.Printf("API listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}
	if stream != nil {
		stream.Close()
	}
	logger.Println("Shutdown complete")
}

// createStores builds either memory-backed or database-backed stores.
// Database mode requires Postgres and uses ClickHouse when configured.
func createStores(ctx context.Context, cfg config.Config, useMemory bool) (*coreStores, func(), error) {
	if useMemory {
		return &coreStores{
			recommenders:    memory.NewRecommenderStore(),
			tokens:          memory.NewTokenPerformanceStore(),
			recommendations: memory.NewRecommendationStore(),
			trades:          memory.NewTradeStore(),
			balances:        memory.NewBalanceStore(),
			archive:         memory.NewSnapshotArchive(),
		}, func() {}, nil
	}

	if cfg.Postgres.DSN == "" {
		return nil, nil, fmt.Errorf("postgres dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	stores := &coreStores{
		recommenders:    pgstore.NewRecommenderStore(pool),
		tokens:          pgstore.NewTokenPerformanceStore(pool),
		recommendations: pgstore.NewRecommendationStore(pool),
		trades:          pgstore.NewTradeStore(pool),
		balances:        pgstore.NewBalanceStore(pool),
	}
	cleanup := func() { pool.Close() }

	if cfg.ClickHouse.DSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
		}
		stores.archive = chstore.NewSnapshotArchiveStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// serveMetrics exposes Prometheus metrics on a dedicated port.
func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	logger.Printf("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("Metrics server error: %v", err)
	}
}

// apiServer exposes the trade lifecycle and ranking over JSON HTTP.
type apiServer struct {
	manager      *trade.Manager
	aggregator   *ranking.Aggregator
	recommenders storage.RecommenderStore
	logger       *log.Logger
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/trades/open", s.handleOpenTrade)
	mux.HandleFunc("POST /api/trades/close", s.handleCloseTrade)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type openTradeRequest struct {
	TokenAddress  string  `json:"tokenAddress"`
	RecommenderID string  `json:"recommenderId"`
	BuyAmount     float64 `json:"buyAmount"`
	Simulation    bool    `json:"simulation"`
}

func (s *apiServer) handleOpenTrade(w http.ResponseWriter, r *http.Request) {
	var req openTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.recommenders.ResolveOrCreate(r.Context(), req.RecommenderID)
	if err != nil {
		s.writeStoreError(w, "resolve recommender", err)
		return
	}

	t, err := s.manager.Open(r.Context(), req.TokenAddress, id, req.BuyAmount, req.Simulation)
	if err != nil {
		s.writeStoreError(w, "open trade", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type closeTradeRequest struct {
	TokenAddress      string  `json:"tokenAddress"`
	RecommenderID     string  `json:"recommenderId"`
	SellAmount        float64 `json:"sellAmount"`
	SellRecommenderID string  `json:"sellRecommenderId"`
	Simulation        bool    `json:"simulation"`
}

func (s *apiServer) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var req closeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.recommenders.ResolveOrCreate(r.Context(), req.RecommenderID)
	if err != nil {
		s.writeStoreError(w, "resolve recommender", err)
		return
	}

	t, err := s.manager.Close(r.Context(), req.TokenAddress, id, time.Now().UnixMilli(),
		req.SellAmount, req.SellRecommenderID, req.Simulation)
	if err != nil {
		s.writeStoreError(w, "close trade", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *apiServer) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	start, err := parseMillis(r.URL.Query().Get("start"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start")
		return
	}
	end, err := parseMillis(r.URL.Query().Get("end"), time.Now().UnixMilli())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end")
		return
	}

	summaries, err := s.aggregator.GetRecommendations(r.Context(), start, end)
	if err != nil {
		s.writeStoreError(w, "rank recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *apiServer) writeStoreError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("api: %s: %v", op, err)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidInput), errors.Is(err, solana.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseMillis(raw string, fallback int64) (int64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
