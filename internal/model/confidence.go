package model

import "math"

// Confidence ceilings. Certainty is never claimed.
const (
	MaxConfidence        = 0.98
	MaxLicenseConfidence = 0.95
	MaxClaimConfidence   = 0.95
)

// ClampConfidence bounds c to [0, MaxConfidence]
func ClampConfidence(c float64) float64 {
	return ClampTo(c, MaxConfidence)
}

// ClampTo bounds c to [0, ceiling]. NaN becomes 0.
func ClampTo(c, ceiling float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > ceiling {
		return ceiling
	}
	return c
}

// Round4 rounds to four decimals so reported confidences stay stable
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
