package model

import "time"

// CycleAction is what the orchestrator actually did this cycle.
type CycleAction string

const (
	ActionBought CycleAction = "BOUGHT"
	ActionSold   CycleAction = "SOLD"
	ActionHeld   CycleAction = "HELD"
	ActionError  CycleAction = "ERROR"
)

// CycleErrorKind classifies a cycle failure. Every failure mode is
// represented as data on the CycleRecord; the orchestrator never throws.
type CycleErrorKind string

const (
	ErrKindNone             CycleErrorKind = ""
	ErrKindInsufficientData CycleErrorKind = "INSUFFICIENT_DATA"
	ErrKindGateway          CycleErrorKind = "GATEWAY_UNAVAILABLE"
	ErrKindOrderFailed      CycleErrorKind = "ORDER_FAILED"
	ErrKindSizingRejected   CycleErrorKind = "SIZING_REJECTED"
	ErrKindStoreFailed      CycleErrorKind = "STORE_FAILED"
	ErrKindCycleInProgress  CycleErrorKind = "CYCLE_IN_PROGRESS"
)

// CycleRecord is the immutable append-only log entry for one orchestrator
// invocation: inputs, decision, action taken, timing, and any error. It is
// the primary debugging surface and is persisted regardless of outcome.
type CycleRecord struct {
	ID        string
	Timestamp time.Time
	Trigger   string // "scheduled" or "manual"

	Price       float64
	BaseBalance float64
	QuoteBal    float64

	Indicators IndicatorSnapshot
	Regime     RegimeClassification

	Signal         Signal
	Reason         string
	IsWinter       bool
	ShadowLeverage float64

	Action   CycleAction
	OrderID  string
	Quantity float64
	Notional float64

	ExecutionMS int64
	ErrorKind   CycleErrorKind
	ErrorMsg    string
}

// CycleResult is what the orchestrator hands back to the scheduler.
type CycleResult struct {
	Success bool
	Action  CycleAction
	Signal  Signal
	Error   CycleErrorKind
}

// Trade is one round-trip (or still-open) position in the trade ledger.
type Trade struct {
	ID             string
	Pair           string
	EntryPrice     float64
	ExitPrice      float64
	Quantity       float64
	ProfitLoss     float64
	EntryRegime    Regime
	ShadowLeverage float64
	Status         string // OPEN or CLOSED
	OpenedAt       time.Time
	ClosedAt       time.Time
}

const (
	TradeOpen   = "OPEN"
	TradeClosed = "CLOSED"
)
