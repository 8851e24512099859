package trade

import (
	"math/rand"
	"sync"

	"github.com/mr-tron/base58"
)

// MarkerGenerator produces synthetic transaction signatures for simulated
// trades. Implementations need not be cryptographically random; the marker
// only has to look like a transaction signature and be unique in practice.
type MarkerGenerator interface {
	TxSignature() string
}

// randMarker generates base58 signatures from a non-cryptographic PRNG.
type randMarker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandMarker creates the default marker generator.
func NewRandMarker(seed int64) MarkerGenerator {
	return &randMarker{rng: rand.New(rand.NewSource(seed))}
}

// TxSignature returns a synthetic 64-byte signature, base58 encoded.
func (m *randMarker) TxSignature() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sig := make([]byte, 64)
	m.rng.Read(sig)
	return base58.Encode(sig)
}
