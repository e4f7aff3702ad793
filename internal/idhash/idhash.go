package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTokenID computes a deterministic token_id using SHA256.
// Formula: SHA256(mint|creator_wallet)
// Returns hex-encoded hash (64 characters).
func ComputeTokenID(mint, creatorWallet string) string {
	data := fmt.Sprintf("%s|%s", mint, creatorWallet)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
