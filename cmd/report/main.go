// Package main prints ranked token recommendation summaries for a time
// window, reading from PostgreSQL or demo fixtures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/ranking"
	"solana-trust-ledger/internal/storage"
	"solana-trust-ledger/internal/storage/memory"
	"solana-trust-ledger/internal/storage/migrations"
	pgstore "solana-trust-ledger/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("TRUST_POSTGRES_DSN"), "PostgreSQL connection string")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of database")
	window := flag.Duration("window", 24*time.Hour, "Look-back window for recommendations")
	flag.Parse()

	ctx := context.Background()

	if !*useFixtures && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	var (
		recommendations storage.RecommendationStore
		tokens          storage.TokenPerformanceStore
		recommenders    storage.RecommenderStore
	)

	if *useFixtures {
		recommendations, tokens, recommenders = createFixtureStores(ctx)
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying migrations: %v\n", err)
			os.Exit(1)
		}
		recommendations = pgstore.NewRecommendationStore(pool)
		tokens = pgstore.NewTokenPerformanceStore(pool)
		recommenders = pgstore.NewRecommenderStore(pool)
	}

	end := time.Now().UnixMilli()
	start := end - window.Milliseconds()

	aggregator := ranking.NewAggregator(recommendations, tokens, recommenders, nil)
	summaries, err := aggregator.GetRecommendations(ctx, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error ranking recommendations: %v\n", err)
		os.Exit(1)
	}

	printSummaries(summaries)
}

func printSummaries(summaries []*domain.TokenRecommendationSummary) {
	if len(summaries) == 0 {
		fmt.Println("No recommendations in window.")
		return
	}

	fmt.Printf("%-4s %-46s %10s %10s %12s %6s\n",
		"#", "TOKEN", "TRUST", "RISK", "CONSISTENCY", "RECS")
	for i, s := range summaries {
		fmt.Printf("%-4d %-46s %10.2f %10.2f %12.2f %6d\n",
			i+1, s.TokenAddress,
			s.AverageTrustScore, s.AverageRiskScore, s.AverageConsistencyScore,
			len(s.Recommenders))
	}
}

// createFixtureStores seeds memory stores with a small demo data set.
func createFixtureStores(ctx context.Context) (storage.RecommendationStore, storage.TokenPerformanceStore, storage.RecommenderStore) {
	recommendations := memory.NewRecommendationStore()
	tokens := memory.NewTokenPerformanceStore()
	recommenders := memory.NewRecommenderStore()

	now := time.Now().UnixMilli()

	seed := []struct {
		external string
		token    string
		trust    float64
		change   float64
	}{
		{"caller-alpha", "DemoTokenAAAA1111111111111111111111111111111", 8.5, 42},
		{"caller-beta", "DemoTokenBBBB2222222222222222222222222222222", 5.0, -12},
		{"caller-alpha", "DemoTokenBBBB2222222222222222222222222222222", 8.5, -12},
	}

	for i, s := range seed {
		id, err := recommenders.ResolveOrCreate(ctx, s.external)
		if err != nil {
			continue
		}
		_ = recommenders.UpsertMetrics(ctx, &domain.RecommenderMetrics{
			RecommenderID:        id,
			TrustScore:           s.trust,
			TotalRecommendations: 1,
			SuccessfulRecs:       1,
			LastActiveDate:       now,
			LastUpdated:          now,
		})
		_ = tokens.Upsert(ctx, &domain.TokenPerformance{
			TokenAddress:   s.token,
			PriceChange24h: s.change,
			LastUpdated:    now,
		})
		_ = recommendations.Insert(ctx, &domain.TokenRecommendation{
			ID:            fmt.Sprintf("fixture-%d", i),
			RecommenderID: id,
			TokenAddress:  s.token,
			Timestamp:     now - int64(i)*1000,
		})
	}

	return recommendations, tokens, recommenders
}
