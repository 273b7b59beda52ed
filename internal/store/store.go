package store

import (
	"errors"
	"time"

	"TrendSentry/internal/model"
)

// ErrUnavailable covers any persistence failure. Callers before order
// execution surface it; callers after execution log and continue, since the
// order already happened in the real world.
var ErrUnavailable = errors.New("store unavailable")

// Store persists the audit trail and the recoverable state. All methods fail
// with an error wrapping ErrUnavailable.
type Store interface {
	SaveCycle(rec *model.CycleRecord) error

	SaveRegimeClassification(c model.RegimeClassification) error
	// LatestRegimeClassifications returns up to n classifications, most
	// recent first.
	LatestRegimeClassifications(n int) ([]model.RegimeClassification, error)

	// LatestPositionState returns the persisted position, or Flat when none
	// has ever been saved.
	LatestPositionState() (model.PositionState, error)
	SavePositionState(state model.PositionState) error

	OpenTrade(t *model.Trade) error
	CloseTrade(id string, exitPrice, profitLoss float64, closedAt time.Time) error
	// LatestOpenTrade returns nil without error when no trade is open.
	LatestOpenTrade() (*model.Trade, error)

	Close() error
}
