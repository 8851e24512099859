package scoring

import "solana-trust-ledger/internal/marketdata"

// Derived signal thresholds.
const (
	RapidDumpThresholdPct       = -50.0
	SustainedGrowthThresholdPct = 50.0
	SuspiciousVolumeRatio       = 0.5
)

// IsRapidDump reports a sharp negative 24h trade swing. A missing change
// percent arrives as zero and is not a dump.
func IsRapidDump(snap *marketdata.TokenSnapshot) bool {
	return snap.Trade24hChangePct < RapidDumpThresholdPct
}

// SustainedGrowth reports 24h volume growth above the threshold.
func SustainedGrowth(snap *marketdata.TokenSnapshot) bool {
	return snap.Volume24hChangePct > SustainedGrowthThresholdPct
}

// SuspiciousVolume reports an abnormal unique-wallet to volume ratio.
// Zero volume yields false: with no volume there is nothing to flag.
func SuspiciousVolume(snap *marketdata.TokenSnapshot) bool {
	if snap.Volume24h == 0 {
		return false
	}
	return snap.UniqueWallet24h/snap.Volume24h > SuspiciousVolumeRatio
}
