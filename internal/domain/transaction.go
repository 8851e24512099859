package domain

// Transaction type constants.
const (
	TransactionTypeBuy  = "buy"
	TransactionTypeSell = "sell"
)

// Transaction is an append-only ledger row for a trade execution. Simulated
// trades get synthetic rows with generated signatures instead of on-chain
// transaction hashes.
type Transaction struct {
	TokenAddress    string
	TransactionHash string
	Type            string // "buy" | "sell"
	Amount          float64
	Price           float64
	IsSimulation    bool
	Timestamp       int64 // ms
}
