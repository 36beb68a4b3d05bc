package utils

import (
	"math/big"
	"strings"
)

// MaxTokenDecimals is the largest number of decimals accepted for a token.
const MaxTokenDecimals = 36

// FormatUnits renders an integer amount of base units as a decimal string using
// the given number of decimals. The conversion is exact; trailing zeros of the
// fractional part are trimmed.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}

	neg := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()

	if decimals > 0 {
		d := int(decimals)
		if len(digits) <= d {
			digits = strings.Repeat("0", d-len(digits)+1) + digits
		}
		intPart := digits[:len(digits)-d]
		fracPart := strings.TrimRight(digits[len(digits)-d:], "0")
		digits = intPart
		if fracPart != "" {
			digits += "." + fracPart
		}
	}

	if neg {
		return "-" + digits
	}
	return digits
}

// ValidDecimals reports whether decimals are within the supported range.
func ValidDecimals(decimals int) bool {
	return decimals >= 0 && decimals <= MaxTokenDecimals
}
