package model

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// ParseAmount parses a base-unit decimal string.
func ParseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// FormatUnits renders base units as a decimal token quantity, e.g. 1.5 for
// 1500000000000000000 with 18 decimals.
func FormatUnits(amount *uint256.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.Dec()
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	whole := new(uint256.Int).Div(amount, scale)
	frac := new(uint256.Int).Mod(amount, scale)
	if frac.IsZero() {
		return whole.Dec()
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%0*s", int(decimals), frac.Dec()), "0")
	return whole.Dec() + "." + fracStr
}
