package domain

// TradePerformance records one buy/sell round trip for a token called by a
// recommender. A row is created OPEN at buy time with all sell fields zeroed
// and transitions to closed exactly once when the sell is recorded. Simulated
// and real trades share the schema but live in logically separate partitions
// selected by the Simulation flag.
type TradePerformance struct {
	TradeKey      string // deterministic hash, see idhash.ComputeTradeKey
	TokenAddress  string
	RecommenderID string

	BuyPrice     float64
	BuyTimestamp int64 // ms
	BuyAmount    float64
	BuySOL       float64
	BuyValueUSD  float64
	BuyMarketCap float64
	BuyLiquidity float64

	SellPrice     float64
	SellTimestamp int64 // ms, zero while open
	SellAmount    float64
	ReceivedSOL   float64
	SellValueUSD  float64
	SellMarketCap float64
	SellLiquidity float64

	ProfitUSD       float64
	ProfitPercent   float64
	MarketCapChange float64
	LiquidityChange float64

	RapidDump   bool
	Simulation  bool
	LastUpdated int64 // ms
}

// Open reports whether the trade has not been closed yet.
func (t *TradePerformance) Open() bool {
	return t.SellTimestamp == 0
}

// TradeClose carries the sell-side fields applied when a trade closes.
type TradeClose struct {
	SellPrice       float64
	SellTimestamp   int64
	SellAmount      float64
	ReceivedSOL     float64
	SellValueUSD    float64
	SellMarketCap   float64
	SellLiquidity   float64
	ProfitUSD       float64
	ProfitPercent   float64
	MarketCapChange float64
	LiquidityChange float64
	RapidDump       bool
}
