package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the candles fetched for one cycle, ascending by time.
// Immutable once fetched; gaps are tolerated, duplicate timestamps are not.
type PriceSeries struct {
	Pair      string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes extracts the close prices in chronological order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastClose returns the close of the most recent bar, or 0 if the series is empty.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Balance holds the account balances for the tracked pair.
type Balance struct {
	Base  float64 // asset held (e.g. BTC)
	Quote float64 // cash available (e.g. USD)
}
