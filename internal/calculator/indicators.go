package calculator

import (
	"errors"

	"TrendSentry/internal/model"
)

// MinSeriesLen is the minimum number of candles a snapshot can be computed
// from. EMA200 additionally wants FullHistoryLen candles to be meaningful.
const (
	MinSeriesLen   = 50
	FullHistoryLen = 200
)

// ErrInsufficientData is returned when the price series is too short to
// compute a snapshot at all.
var ErrInsufficientData = errors.New("insufficient price data")

// ComputeIndicators builds an IndicatorSnapshot from the series as of its
// last candle. Requires at least MinSeriesLen candles. Below FullHistoryLen
// candles EMA200 degrades to the mean of all available closes and the
// snapshot is flagged EMA200Approximate; callers must skip winter gating
// in that state.
func ComputeIndicators(series *model.PriceSeries) (model.IndicatorSnapshot, error) {
	closes := series.Closes()
	if len(closes) < MinSeriesLen {
		return model.IndicatorSnapshot{}, ErrInsufficientData
	}

	snap := model.IndicatorSnapshot{Close: closes[len(closes)-1]}

	ema20 := ComputeEMA(closes, 20)
	ema50 := ComputeEMA(closes, 50)
	snap.EMA20 = ema20[len(ema20)-1]
	snap.EMA50 = ema50[len(ema50)-1]

	if len(closes) >= FullHistoryLen {
		ema200 := ComputeEMA(closes, 200)
		snap.EMA200 = ema200[len(ema200)-1]
	} else {
		snap.EMA200 = mean(closes)
		snap.EMA200Approximate = true
	}

	rsi := ComputeRSI(closes, 14)
	snap.RSI14 = rsi[len(rsi)-1]

	return snap, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
