package model

// IndicatorSnapshot holds the trend indicators computed from a PriceSeries
// as of its last candle.
type IndicatorSnapshot struct {
	Close  float64
	EMA20  float64
	EMA50  float64
	EMA200 float64
	RSI14  float64

	// EMA200Approximate is set when fewer than 200 candles were available and
	// EMA200 fell back to the mean of all closes. Winter gating cannot be
	// reliably evaluated while this is set.
	EMA200Approximate bool
}
