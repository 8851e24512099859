// Package scoring implements the pure trust scoring functions: risk,
// consistency, trust and inactivity decay. All functions are side-effect
// free over domain snapshots.
package scoring

import (
	"math"
	"time"

	"solana-trust-ledger/internal/domain"
)

// Risk flag weights. Risk is additive over the point-in-time flags of a
// token snapshot; maximum 30 with all four flags set.
const (
	RugPullWeight          = 10.0
	ScamWeight             = 10.0
	RapidDumpWeight        = 5.0
	SuspiciousVolumeWeight = 5.0
)

// Decay parameters: stored trust loses 5% per inactive day, capped at
// 30 days of decay.
const (
	DecayRate    = 0.95
	MaxDecayDays = 30
)

// RiskScore computes the additive risk score for a token snapshot.
func RiskScore(tp *domain.TokenPerformance) float64 {
	score := 0.0
	if tp.RugPull {
		score += RugPullWeight
	}
	if tp.IsScam {
		score += ScamWeight
	}
	if tp.RapidDump {
		score += RapidDumpWeight
	}
	if tp.SuspiciousVolume {
		score += SuspiciousVolumeWeight
	}
	return score
}

// ConsistencyScore measures how far the token's 24h price change sits from
// the recommender's running average performance. Lower is better; the value
// is not normalized.
func ConsistencyScore(tp *domain.TokenPerformance, m *domain.RecommenderMetrics) float64 {
	return math.Abs(tp.PriceChange24h - m.AvgTokenPerformance)
}

// TrustScore blends risk and consistency into a single composite.
//
// TrustScore and OverallRiskScore currently share the same formula. The
// duplication is intentional upstream behavior; they are kept as distinct
// operations so a later correction stays localized.
func TrustScore(tp *domain.TokenPerformance, m *domain.RecommenderMetrics) float64 {
	return (RiskScore(tp) + ConsistencyScore(tp, m)) / 2
}

// OverallRiskScore computes the composite risk for a recommendation.
// See TrustScore for why the formula matches.
func OverallRiskScore(tp *domain.TokenPerformance, m *domain.RecommenderMetrics) float64 {
	return (RiskScore(tp) + ConsistencyScore(tp, m)) / 2
}

// InactiveDays returns whole days elapsed between lastActive and now
// (both ms). Negative elapsed time counts as zero.
func InactiveDays(lastActive, now int64) int {
	if now <= lastActive {
		return 0
	}
	return int((now - lastActive) / time.Hour.Milliseconds() / 24)
}

// DecayFactor returns the multiplicative trust decay for a number of
// inactive days: DecayRate^min(days, MaxDecayDays).
func DecayFactor(inactiveDays int) float64 {
	if inactiveDays < 0 {
		inactiveDays = 0
	}
	if inactiveDays > MaxDecayDays {
		inactiveDays = MaxDecayDays
	}
	return math.Pow(DecayRate, float64(inactiveDays))
}

// DecayedScore applies inactivity decay to a stored trust score. The decayed
// value is computed on refresh and is not persisted unless an update runs.
func DecayedScore(storedTrust float64, lastActive, now int64) float64 {
	return storedTrust * DecayFactor(InactiveDays(lastActive, now))
}
