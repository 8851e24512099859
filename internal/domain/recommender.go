package domain

// RecommenderMetrics holds rolling trust metrics for a single recommender.
// One record per recommender, created lazily on the first closed trade and
// replaced wholesale on every update.
// Invariant: TotalRecommendations >= SuccessfulRecs >= 0.
type RecommenderMetrics struct {
	RecommenderID        string
	TrustScore           float64
	TotalRecommendations int
	SuccessfulRecs       int
	AvgTokenPerformance  float64 // running mean of 24h price change at close
	RiskScore            float64
	ConsistencyScore     float64
	VirtualConfidence    float64
	LastActiveDate       int64 // ms
	TrustDecay           float64
	LastUpdated          int64 // ms
}
