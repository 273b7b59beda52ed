package sizer

import (
	"math"
	"strings"
	"testing"

	"TrendSentry/internal/model"
)

func TestSizeAcceptedOrder(t *testing.T) {
	order, reject := Size(model.Balance{Quote: 10000}, 50000, RiskParams{
		CapitalPercent:    80,
		MinOrderNotional:  10,
		MinReservePercent: 5,
	})
	if reject != "" {
		t.Fatalf("unexpected rejection: %s", reject)
	}
	if order.Notional != 8000 {
		t.Errorf("notional = %v, want 8000", order.Notional)
	}
	if math.Abs(order.Quantity-0.16) > 1e-12 {
		t.Errorf("quantity = %v, want 0.16", order.Quantity)
	}
}

func TestSizeRejections(t *testing.T) {
	tests := []struct {
		name    string
		balance model.Balance
		price   float64
		params  RiskParams
		wantIn  string
	}{
		{
			name:    "below minimum notional",
			balance: model.Balance{Quote: 10},
			price:   50000,
			params:  RiskParams{CapitalPercent: 50, MinOrderNotional: 10, MinReservePercent: 5},
			wantIn:  "below minimum order",
		},
		{
			name:    "reserve floor breached",
			balance: model.Balance{Quote: 1000},
			price:   50000,
			params:  RiskParams{CapitalPercent: 98, MinOrderNotional: 10, MinReservePercent: 5},
			wantIn:  "reserve floor",
		},
		{
			name:    "non-positive price",
			balance: model.Balance{Quote: 1000},
			price:   0,
			params:  RiskParams{CapitalPercent: 50, MinOrderNotional: 10, MinReservePercent: 5},
			wantIn:  "non-positive price",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order, reject := Size(tc.balance, tc.price, tc.params)
			if reject == "" {
				t.Fatalf("expected rejection, got order %+v", order)
			}
			if !strings.Contains(reject, tc.wantIn) {
				t.Errorf("reject %q does not contain %q", reject, tc.wantIn)
			}
			if order.Quantity != 0 || order.Notional != 0 {
				t.Errorf("rejected sizing must return a zero order, got %+v", order)
			}
		})
	}
}

func TestSizeExactMinimumNotionalPasses(t *testing.T) {
	_, reject := Size(model.Balance{Quote: 20}, 100, RiskParams{
		CapitalPercent:    50,
		MinOrderNotional:  10,
		MinReservePercent: 5,
	})
	if reject != "" {
		t.Errorf("notional equal to the minimum should pass, got: %s", reject)
	}
}
