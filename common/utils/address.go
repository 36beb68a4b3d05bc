package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// ZeroAddress represents the zero address.
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

// NormalizeAddress returns the lowercase 0x-prefixed form of an address, or an empty
// string when the input is not a valid hex address.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return ""
	}
	return strings.ToLower(common.HexToAddress(address).Hex())
}

// IsZeroAddress reports whether the address is empty or the zero address.
func IsZeroAddress(address string) bool {
	n := NormalizeAddress(address)
	return n == "" || n == ZeroAddress
}

// ShortAddress abbreviates an address as 0x1234…abcd.
func ShortAddress(address string) string {
	a := strings.TrimSpace(address)
	if len(a) <= 10 {
		return a
	}
	return a[:6] + "…" + a[len(a)-4:]
}

// NormalizeTxHash lowercases a transaction hash and ensures the 0x prefix.
// It returns false when the hash is empty, not hexadecimal, longer than 32 bytes
// or entirely zero, which is how an unset bytes32 reads back from a contract.
func NormalizeTxHash(hash string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(hash))
	h = strings.TrimPrefix(h, "0x")
	if h == "" || len(h) > 64 {
		return "", false
	}

	allZero := true
	for _, c := range h {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		default:
			return "", false
		}
		if c != '0' {
			allZero = false
		}
	}
	if allZero {
		return "", false
	}

	return "0x" + h, true
}
