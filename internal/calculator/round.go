package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tolerance is the smallest amount treated as non-zero. Comparisons against
// zero in this package go through IsZero.
const Tolerance = 0.01

// Round2 rounds to cents, half away from zero. NaN and infinities are
// returned unchanged.
func Round2(v float64) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsZero reports whether v is within Tolerance of zero.
func IsZero(v float64) bool {
	return v > -Tolerance && v < Tolerance
}
