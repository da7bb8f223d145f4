// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewContractID returns an opaque ledger-style contract id: a version byte
// followed by 32 random bytes, hex encoded.
func NewContractID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "00" + hex.EncodeToString(b), nil
}

// ShortID abbreviates a contract id for terminal output.
func ShortID(id string, n int) string {
	if n <= 0 || len(id) <= n {
		return id
	}
	return id[:n] + "..."
}
