package decision

import (
	"fmt"

	"TrendSentry/internal/calculator"
	"TrendSentry/internal/model"
)

// Strategy constants. The 1.5% buffer is fixed hysteresis to prevent churn
// from crossing an EMA right at the line; exits deliberately anchor on the
// slower EMA50 while entries use EMA20, so winners get room and churn stays
// low.
const (
	BufferPercent       = 0.015
	CatastrophicPercent = 0.03
	WinterRSIThreshold  = 65.0
	BullShadowLeverage  = 1.5
	SpotLeverage        = 1.0
)

// Input carries everything one evaluation needs. SeriesLen is the candle
// count the snapshot was computed from, so short-history cycles degrade to
// HOLD here instead of failing upstream.
type Input struct {
	SeriesLen  int
	Indicators model.IndicatorSnapshot
	Regime     model.RegimeClassification
	Position   model.PositionState
}

// Evaluate runs the entry/exit state machine for one cycle. Pure function:
// same input, same Evaluation. Reason strings name the exact branch taken.
func Evaluate(in Input) model.Evaluation {
	eval := model.Evaluation{
		Signal:         model.SignalHold,
		Regime:         in.Regime.Regime,
		ShadowLeverage: shadowLeverage(in.Regime.Regime),
		Indicators:     in.Indicators,
	}

	if in.SeriesLen < calculator.MinSeriesLen {
		eval.Reason = fmt.Sprintf("insufficient price data: %d candles < %d required", in.SeriesLen, calculator.MinSeriesLen)
		return eval
	}

	ind := in.Indicators
	eval.IsWinter = !ind.EMA200Approximate && ind.Close < ind.EMA200

	if in.Position.Open {
		evaluateExit(&eval, ind, in.Regime.Regime)
	} else {
		evaluateEntry(&eval, ind, in.Regime.Regime)
	}
	return eval
}

func evaluateEntry(eval *model.Evaluation, ind model.IndicatorSnapshot, regime model.Regime) {
	if eval.IsWinter {
		evaluateWinterEntry(eval, ind, regime)
		return
	}

	if regime == model.RegimeBear {
		eval.Reason = "BEAR regime: entries hard-blocked"
		return
	}

	// BULL and VOLATILE anchor on EMA20; LATERAL needs the stronger EMA50
	// confirmation.
	anchor := ind.EMA20
	anchorName := "EMA20"
	if regime == model.RegimeLateral {
		anchor = ind.EMA50
		anchorName = "EMA50"
	}
	threshold := anchor * (1 + BufferPercent)
	eval.Thresholds.Entry = threshold

	if ind.Close > threshold {
		eval.Signal = model.SignalBuy
		eval.Reason = fmt.Sprintf("%s regime: price %.2f above %s+1.5%% threshold %.2f",
			regime, ind.Close, anchorName, threshold)
		return
	}
	eval.Reason = fmt.Sprintf("%s regime: price %.2f not above %s+1.5%% threshold %.2f",
		regime, ind.Close, anchorName, threshold)
}

// evaluateWinterEntry is the capital-preservation override: with price below
// EMA200, a buy needs both an external BULL call and strong momentum.
func evaluateWinterEntry(eval *model.Evaluation, ind model.IndicatorSnapshot, regime model.Regime) {
	eval.Thresholds.WinterRSI = WinterRSIThreshold

	if regime != model.RegimeBull {
		eval.Reason = fmt.Sprintf("winter mode: %s regime entry blocked (price %.2f below EMA200 %.2f)",
			regime, ind.Close, ind.EMA200)
		return
	}
	if ind.RSI14 <= WinterRSIThreshold {
		eval.Reason = fmt.Sprintf("winter mode: RSI %.2f not above %.0f, entry blocked",
			ind.RSI14, WinterRSIThreshold)
		return
	}

	threshold := ind.EMA20 * (1 + BufferPercent)
	eval.Thresholds.Entry = threshold
	if ind.Close > threshold {
		eval.Signal = model.SignalBuy
		eval.Reason = fmt.Sprintf("winter mode override: BULL regime, RSI %.2f > %.0f, price %.2f above EMA20+1.5%% threshold %.2f",
			ind.RSI14, WinterRSIThreshold, ind.Close, threshold)
		return
	}
	eval.Reason = fmt.Sprintf("winter mode: RSI %.2f > %.0f but price %.2f not above EMA20+1.5%% threshold %.2f",
		ind.RSI14, WinterRSIThreshold, ind.Close, threshold)
}

func evaluateExit(eval *model.Evaluation, ind model.IndicatorSnapshot, regime model.Regime) {
	exitThreshold := ind.EMA50 * (1 - BufferPercent)
	eval.Thresholds.Exit = exitThreshold

	if ind.Close >= exitThreshold {
		eval.Reason = fmt.Sprintf("holding: price %.2f at or above EMA50-1.5%% threshold %.2f",
			ind.Close, exitThreshold)
		return
	}

	if regime == model.RegimeBull {
		catastrophic := ind.EMA50 * (1 - CatastrophicPercent)
		eval.Thresholds.CatastrophicExit = catastrophic
		if ind.Close < catastrophic {
			eval.Signal = model.SignalSell
			eval.Reason = fmt.Sprintf("catastrophic exit: price %.2f below EMA50-3%% threshold %.2f despite BULL regime",
				ind.Close, catastrophic)
			return
		}
		eval.Reason = fmt.Sprintf("BULL regime: tolerating pullback, price %.2f above catastrophic threshold %.2f",
			ind.Close, catastrophic)
		return
	}

	eval.Signal = model.SignalSell
	eval.Reason = fmt.Sprintf("%s regime: price %.2f below EMA50-1.5%% threshold %.2f",
		regime, ind.Close, exitThreshold)
}

// shadowLeverage is the audit-only multiplier used to report what-if margin
// performance. Real order sizing always uses spot regardless of this value.
func shadowLeverage(regime model.Regime) float64 {
	if regime == model.RegimeBull {
		return BullShadowLeverage
	}
	return SpotLeverage
}
