package solana

import (
	"errors"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	// System program address: base58 of 32 zero bytes.
	if err := ValidateAddress("11111111111111111111111111111111"); err != nil {
		t.Errorf("expected valid address, got %v", err)
	}

	if err := ValidateAddress("not-base58-0OIl"); err == nil {
		t.Error("expected error for non-base58 input")
	}

	// Valid base58 but wrong length.
	if err := ValidateAddress("abc"); err == nil {
		t.Error("expected error for short address")
	}
}

// Valid 32-byte base58 key (0x02 followed by 31 zero bytes) that fails
// ed25519 point decompression, like a program-derived address.
const offCurveAddr = "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh"

func TestIsOnCurve(t *testing.T) {
	// 32 zero bytes decode to the curve identity point.
	if !IsOnCurve("11111111111111111111111111111111") {
		t.Error("expected identity point to be on curve")
	}

	if IsOnCurve(offCurveAddr) {
		t.Error("expected off-curve key to be rejected")
	}

	if IsOnCurve("abc") {
		t.Error("expected malformed address to be off curve")
	}
}

func TestValidateWalletAddress(t *testing.T) {
	if err := ValidateWalletAddress("So11111111111111111111111111111111111111112"); err != nil {
		t.Errorf("expected on-curve wallet to validate, got %v", err)
	}

	err := ValidateWalletAddress(offCurveAddr)
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for off-curve wallet, got %v", err)
	}

	if err := ValidateWalletAddress("abc"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for short address, got %v", err)
	}
}
