package model

// Signal is the decision engine's verdict for one cycle.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Thresholds captures the exact threshold values a decision was taken
// against, so the branch can be reconstructed from the record alone.
type Thresholds struct {
	Entry            float64 // anchor EMA * 1.015, 0 when not evaluated
	Exit             float64 // EMA50 * 0.985, 0 when flat
	CatastrophicExit float64 // EMA50 * 0.97, BULL positions only
	WinterRSI        float64 // RSI floor inside winter mode
}

// Evaluation is the full output of one decision engine run.
type Evaluation struct {
	Signal         Signal
	Reason         string
	Regime         Regime
	IsWinter       bool
	ShadowLeverage float64
	Indicators     IndicatorSnapshot
	Thresholds     Thresholds
}
