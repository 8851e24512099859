package domain

// TokenPerformance is a point-in-time performance and risk snapshot for a
// token. One record per token address, upserted per event. Flags describe the
// snapshot, not cumulative history.
type TokenPerformance struct {
	TokenAddress       string
	Symbol             string
	PriceChange24h     float64
	VolumeChange24h    float64
	TradeChange24h     float64
	LiquidityChange24h float64
	HolderChange24h    float64
	Liquidity          float64
	MarketCapChange24h float64

	RugPull          bool
	IsScam           bool
	SustainedGrowth  bool
	RapidDump        bool
	SuspiciousVolume bool

	ValidationTrust  float64
	Balance          float64
	InitialMarketCap float64
	LastUpdated      int64 // ms
}

// TokenRecommendation records a single call by a recommender on a token.
// Immutable once created.
type TokenRecommendation struct {
	ID               string
	RecommenderID    string
	TokenAddress     string
	Timestamp        int64 // ms
	InitialMarketCap float64
	InitialLiquidity float64
	InitialPrice     float64
}

// RecommenderEntry is one recommender's contribution to a token summary.
type RecommenderEntry struct {
	RecommenderID    string
	RecommendationID string
	TrustScore       float64
	RiskScore        float64
	ConsistencyScore float64
}

// TokenRecommendationSummary is a report-only aggregate of all
// recommendations for a token within a query range. Not persisted.
type TokenRecommendationSummary struct {
	TokenAddress            string
	AverageTrustScore       float64
	AverageRiskScore        float64
	AverageConsistencyScore float64
	Recommenders            []RecommenderEntry
}
