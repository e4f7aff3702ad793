// Package solana provides address-level validation helpers.
package solana

import (
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for strings that do not decode to a
// 32-byte base58 value.
var ErrInvalidAddress = errors.New("invalid solana address")

// ValidateAddress checks that addr is base58 and decodes to 32 bytes.
// Works for both wallet addresses and PDAs.
func ValidateAddress(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return ErrInvalidAddress
	}
	if len(decoded) != 32 {
		return ErrInvalidAddress
	}
	return nil
}

// IsOnCurve reports whether addr decodes to a point on the ed25519
// curve. Wallet addresses are on-curve; PDAs are off-curve by
// construction.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// ValidateWallet checks that addr is a plausible wallet: 32 bytes of
// base58 and on the ed25519 curve.
func ValidateWallet(addr string) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if !IsOnCurve(addr) {
		return ErrInvalidAddress
	}
	return nil
}
