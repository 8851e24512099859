package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRecommenderID derives a stable recommender id from an external
// identity (platform user id or wallet address).
// Formula: SHA256(external_id), hex-encoded.
func ComputeRecommenderID(externalID string) string {
	hash := sha256.Sum256([]byte(externalID))
	return hex.EncodeToString(hash[:])
}

// ComputeRecommendationID computes a deterministic recommendation id.
// Formula: SHA256(token_address|recommender_id|timestamp)
// Returns hex-encoded hash (64 characters).
func ComputeRecommendationID(tokenAddress, recommenderID string, timestamp int64) string {
	data := fmt.Sprintf("%s|%s|%d", tokenAddress, recommenderID, timestamp)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
