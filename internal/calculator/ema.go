package calculator

// ComputeEMA computes the exponential moving average with the given span,
// seeded with the first value. No look-ahead: out[i] depends only on
// values[0..i]. Returns nil when fewer than span values are supplied; the
// caller is expected to check length first.
func ComputeEMA(values []float64, span int) []float64 {
	if span <= 0 || len(values) < span {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
