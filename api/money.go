package api

import "math"

// Amounts cross the wire as USDT decimal numbers; internally everything is
// int64 cents. Rounding happens once, at the boundary.

func toCents(usdt float64) int64 {
	return int64(math.Round(usdt * 100))
}

func toUSDT(cents int64) float64 {
	return float64(cents) / 100
}

type balanceView struct {
	Frozen float64 `json:"frozen"`
	Basic  float64 `json:"basic"`
	Pro    float64 `json:"pro"`
	Cash   float64 `json:"cash"`
	Total  float64 `json:"total"`
}
