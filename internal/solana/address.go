// Package solana provides address validation helpers.
package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLen is the byte length of a Solana public key.
const AddressLen = 32

// ErrInvalidAddress marks addresses that fail base58 or length checks.
var ErrInvalidAddress = errors.New("invalid solana address")

// ValidateAddress checks that addr is a base58-encoded 32-byte key.
func ValidateAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: decode %q: %v", ErrInvalidAddress, addr, err)
	}
	if len(raw) != AddressLen {
		return fmt.Errorf("%w: %q: expected %d bytes, got %d", ErrInvalidAddress, addr, AddressLen, len(raw))
	}
	return nil
}

// ValidateWalletAddress checks that addr is a well-formed key on the
// ed25519 curve. Program-derived addresses are off-curve and cannot sign,
// so they are rejected wherever a wallet is expected.
func ValidateWalletAddress(addr string) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if !IsOnCurve(addr) {
		return fmt.Errorf("%w: %q is not on the ed25519 curve", ErrInvalidAddress, addr)
	}
	return nil
}

// IsOnCurve reports whether addr decodes to a point on the ed25519 curve.
// Wallet addresses are on-curve; program-derived addresses are not.
func IsOnCurve(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != AddressLen {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
