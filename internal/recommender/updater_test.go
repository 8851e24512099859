package recommender

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/marketdata/stub"
	"solana-trust-ledger/internal/scoring"
	"solana-trust-ledger/internal/storage/memory"
)

func newUpdater(provider *stub.Provider, at time.Time) (*Updater, *memory.RecommenderStore) {
	store := memory.NewRecommenderStore()
	u := NewUpdater(store, provider, nil, nil)
	u.now = func() time.Time { return at }
	return u, store
}

func TestApplyTradeOutcome_CreatesMetricsLazily(t *testing.T) {
	ctx := context.Background()
	u, store := newUpdater(stub.NewProvider(), time.UnixMilli(1000))

	tp := &domain.TokenPerformance{TokenAddress: "tokenA", PriceChange24h: 20}
	if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
		t.Fatalf("ApplyTradeOutcome failed: %v", err)
	}

	m, err := store.GetMetrics(ctx, "rec1")
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if m.TotalRecommendations != 1 || m.SuccessfulRecs != 1 {
		t.Errorf("unexpected counts: %+v", m)
	}
	if m.AvgTokenPerformance != 20 {
		t.Errorf("expected avg 20, got %f", m.AvgTokenPerformance)
	}
}

func TestApplyTradeOutcome_RugPullNotSuccessful(t *testing.T) {
	ctx := context.Background()
	u, store := newUpdater(stub.NewProvider(), time.UnixMilli(1000))

	tp := &domain.TokenPerformance{TokenAddress: "tokenA", PriceChange24h: -90, RugPull: true}
	if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
		t.Fatalf("ApplyTradeOutcome failed: %v", err)
	}

	m, _ := store.GetMetrics(ctx, "rec1")
	if m.TotalRecommendations != 1 {
		t.Errorf("expected 1 total, got %d", m.TotalRecommendations)
	}
	if m.SuccessfulRecs != 0 {
		t.Errorf("rug pull counted as success: %d", m.SuccessfulRecs)
	}
	if m.RiskScore < 10 {
		t.Errorf("expected risk >= 10 for rug pull, got %f", m.RiskScore)
	}
}

func TestApplyTradeOutcome_RunningMeanOrderIndependent(t *testing.T) {
	ctx := context.Background()
	outcomes := []float64{10, -5, 30, 0, 15}

	apply := func(order []float64) float64 {
		u, store := newUpdater(stub.NewProvider(), time.UnixMilli(1000))
		for _, change := range order {
			tp := &domain.TokenPerformance{TokenAddress: "tokenA", PriceChange24h: change}
			if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
				t.Fatalf("ApplyTradeOutcome failed: %v", err)
			}
		}
		m, _ := store.GetMetrics(ctx, "rec1")
		return m.AvgTokenPerformance
	}

	forward := apply(outcomes)

	reversed := make([]float64, len(outcomes))
	for i, o := range outcomes {
		reversed[len(outcomes)-1-i] = o
	}
	backward := apply(reversed)

	if math.Abs(forward-backward) > 1e-9 {
		t.Errorf("running mean order-dependent: %f vs %f", forward, backward)
	}

	want := (10.0 - 5 + 30 + 0 + 15) / 5
	if math.Abs(forward-want) > 1e-9 {
		t.Errorf("expected mean %f, got %f", want, forward)
	}
}

func TestApplyTradeOutcome_DecayUsesPreUpdateTrust(t *testing.T) {
	ctx := context.Background()
	day := 24 * time.Hour

	u, store := newUpdater(stub.NewProvider(), time.UnixMilli(0))
	seed := &domain.RecommenderMetrics{
		RecommenderID:        "rec1",
		TrustScore:           10,
		TotalRecommendations: 1,
		SuccessfulRecs:       1,
		LastActiveDate:       0,
	}
	if err := store.UpsertMetrics(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Two inactive days elapse before the next close.
	u.now = func() time.Time { return time.UnixMilli(0).Add(2 * day) }

	tp := &domain.TokenPerformance{TokenAddress: "tokenA", PriceChange24h: 5}
	if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
		t.Fatalf("ApplyTradeOutcome failed: %v", err)
	}

	m, _ := store.GetMetrics(ctx, "rec1")
	want := 10 * math.Pow(scoring.DecayRate, 2)
	if math.Abs(m.TrustDecay-want) > 1e-9 {
		t.Errorf("expected decay from pre-update trust %f, got %f", want, m.TrustDecay)
	}
	if m.LastActiveDate != u.now().UnixMilli() {
		t.Error("expected last active date reset")
	}
}

func TestApplyTradeOutcome_BalanceFailureDegradesToZeroConfidence(t *testing.T) {
	ctx := context.Background()
	provider := stub.NewProvider()
	provider.BalanceErr = errors.New("wallet unavailable")

	u, store := newUpdater(provider, time.UnixMilli(1000))
	tp := &domain.TokenPerformance{TokenAddress: "tokenA", PriceChange24h: 5}
	if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
		t.Fatalf("expected balance failure to degrade, got %v", err)
	}

	m, _ := store.GetMetrics(ctx, "rec1")
	if m.VirtualConfidence != 0 {
		t.Errorf("expected zero confidence on balance failure, got %f", m.VirtualConfidence)
	}
}

func TestApplyTradeOutcome_VirtualConfidenceDivisor(t *testing.T) {
	ctx := context.Background()
	provider := stub.NewProvider()
	provider.SetWalletBalance(2_000_000)

	u, store := newUpdater(provider, time.UnixMilli(1000))
	tp := &domain.TokenPerformance{TokenAddress: "tokenA"}
	if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
		t.Fatalf("ApplyTradeOutcome failed: %v", err)
	}

	m, _ := store.GetMetrics(ctx, "rec1")
	if m.VirtualConfidence != 2.0 {
		t.Errorf("expected confidence 2.0 with default divisor, got %f", m.VirtualConfidence)
	}

	// The divisor is provisional and overridable.
	u.ConfidenceDivisor = 1000
	if err := u.ApplyTradeOutcome(ctx, "rec1", tp); err != nil {
		t.Fatalf("ApplyTradeOutcome failed: %v", err)
	}
	m, _ = store.GetMetrics(ctx, "rec1")
	if m.VirtualConfidence != 2000 {
		t.Errorf("expected confidence 2000 with divisor 1000, got %f", m.VirtualConfidence)
	}
}

func TestCurrentTrust_AppliesDecayWithoutPersisting(t *testing.T) {
	ctx := context.Background()
	day := 24 * time.Hour

	u, store := newUpdater(stub.NewProvider(), time.UnixMilli(0).Add(3*day))
	seed := &domain.RecommenderMetrics{
		RecommenderID:        "rec1",
		TrustScore:           8,
		TotalRecommendations: 1,
		SuccessfulRecs:       1,
		LastActiveDate:       0,
	}
	if err := store.UpsertMetrics(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	trust, err := u.CurrentTrust(ctx, "rec1")
	if err != nil {
		t.Fatalf("CurrentTrust failed: %v", err)
	}
	want := 8 * math.Pow(scoring.DecayRate, 3)
	if math.Abs(trust-want) > 1e-9 {
		t.Errorf("expected decayed trust %f, got %f", want, trust)
	}

	// Stored record is untouched.
	m, _ := store.GetMetrics(ctx, "rec1")
	if m.TrustScore != 8 {
		t.Errorf("stored trust mutated to %f", m.TrustScore)
	}
}
