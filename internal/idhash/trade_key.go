package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeKey computes a deterministic trade key using SHA256.
// Formula: SHA256(token_address|recommender_id|buy_timestamp|simulation)
// Returns hex-encoded hash (64 characters).
func ComputeTradeKey(
	tokenAddress string,
	recommenderID string,
	buyTimestamp int64,
	simulation bool,
) string {
	data := fmt.Sprintf("%s|%s|%d|%t",
		tokenAddress,
		recommenderID,
		buyTimestamp,
		simulation,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
