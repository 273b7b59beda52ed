package model

import "time"

// Regime is the externally supplied market character classification.
type Regime string

const (
	RegimeBull     Regime = "BULL"
	RegimeBear     Regime = "BEAR"
	RegimeLateral  Regime = "LATERAL"
	RegimeVolatile Regime = "VOLATILE"
)

// Valid reports whether r is one of the four known regimes.
func (r Regime) Valid() bool {
	switch r {
	case RegimeBull, RegimeBear, RegimeLateral, RegimeVolatile:
		return true
	}
	return false
}

// RegimeSource records where a classification came from, for audit.
type RegimeSource string

const (
	SourceFresh   RegimeSource = "fresh"
	SourceCached  RegimeSource = "cached"
	SourceDefault RegimeSource = "default"
)

// RegimeClassification is one advisory verdict, produced once per cycle and
// never mutated after creation.
type RegimeClassification struct {
	Regime         Regime
	BuyThreshold   float64
	SellThreshold  float64
	CapitalPercent float64
	Confidence     float64
	Reasoning      string
	Source         RegimeSource
	CreatedAt      time.Time
}

// DefaultClassification is the hardcoded fallback used when neither the
// advisory nor the store can produce a classification.
func DefaultClassification(now time.Time) RegimeClassification {
	return RegimeClassification{
		Regime:         RegimeLateral,
		BuyThreshold:   50,
		SellThreshold:  35,
		CapitalPercent: 75,
		Confidence:     0.5,
		Reasoning:      "default parameters - advisory unavailable",
		Source:         SourceDefault,
		CreatedAt:      now,
	}
}
