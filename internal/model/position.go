package model

import "time"

// PositionState is the single mutable entity the decision engine reads and
// the orchestrator writes after a confirmed fill. Exactly one exists for the
// tracked asset; it advances to open only after a successful BUY execution
// and reverts to flat only after a successful SELL execution.
type PositionState struct {
	Open           bool
	EntryPrice     float64
	Quantity       float64
	EntryRegime    Regime
	ShadowLeverage float64
	EntryTime      time.Time
}

// Flat returns the initial, position-less state.
func Flat() PositionState {
	return PositionState{}
}
