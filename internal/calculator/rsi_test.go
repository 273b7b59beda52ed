package calculator

import (
	"math"
	"testing"
)

func TestComputeRSITooShort(t *testing.T) {
	values := make([]float64, 14)
	if got := ComputeRSI(values, 14); got != nil {
		t.Errorf("expected nil for %d values with period 14, got %v", len(values), got)
	}
}

func TestComputeRSIWarmupIsNaN(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	out := ComputeRSI(values, 14)
	if len(out) != len(values) {
		t.Fatalf("expected output length %d, got %d", len(values), len(out))
	}
	for i := 0; i < 14; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("out[%d] = %v, want NaN during warmup", i, out[i])
		}
	}
	if math.IsNaN(out[14]) {
		t.Error("out[14] should be the first defined RSI value")
	}
}

func TestComputeRSISaturatesOnPureGains(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	out := ComputeRSI(values, 14)
	if got := out[len(out)-1]; got != 100 {
		t.Errorf("monotonic gains should saturate RSI at 100, got %v", got)
	}
}

func TestComputeRSIZeroOnPureLosses(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 1000 - float64(i)
	}
	out := ComputeRSI(values, 14)
	if got := out[len(out)-1]; got != 0 {
		t.Errorf("monotonic losses should drive RSI to 0, got %v", got)
	}
}

func TestComputeRSIBalancedAlternation(t *testing.T) {
	// Equal-sized gains and losses in alternation: avgGain == avgLoss at the
	// first full window, so RSI is exactly 50 there.
	values := make([]float64, 15)
	values[0] = 100
	for i := 1; i < len(values); i++ {
		if i%2 == 1 {
			values[i] = values[i-1] + 1
		} else {
			values[i] = values[i-1] - 1
		}
	}
	out := ComputeRSI(values, 14)
	if !almostEqual(out[14], 50) {
		t.Errorf("balanced alternation should give RSI 50, got %v", out[14])
	}
}

func TestComputeRSIStaysInRange(t *testing.T) {
	values := []float64{
		100, 103, 99, 104, 98, 107, 105, 110, 102, 108,
		111, 106, 113, 109, 115, 112, 118, 114, 120, 117,
	}
	out := ComputeRSI(values, 14)
	for i := 14; i < len(out); i++ {
		if out[i] < 0 || out[i] > 100 {
			t.Errorf("out[%d] = %v, outside [0, 100]", i, out[i])
		}
	}
}
