package pricing

import "math"

// Round2 rounds to 2 decimals, half away from zero (HALF_UP for the
// money amounts used here).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimals; used for margin rates.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
