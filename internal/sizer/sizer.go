package sizer

import (
	"fmt"

	"TrendSentry/internal/model"
)

// RiskParams bounds how much of the quote balance one entry may commit.
type RiskParams struct {
	CapitalPercent    float64 // share of quote balance to deploy, 0-100
	MinOrderNotional  float64 // exchange minimum order value in quote units
	MinReservePercent float64 // share of quote balance kept untouched, 0-100
}

// Order is a concrete sized BUY: quantity in base units and the quote
// notional it commits. No leverage is ever applied here; shadow leverage is
// reporting-only and must not reach real capital at risk.
type Order struct {
	Quantity float64
	Notional float64
}

// Size converts a BUY signal plus balances into an order. A zero Order and a
// reason is returned when the trade must be rejected; the caller downgrades
// to HOLD and records why.
func Size(balance model.Balance, price float64, params RiskParams) (Order, string) {
	if price <= 0 {
		return Order{}, "sizing rejected: non-positive price"
	}

	notional := balance.Quote * (params.CapitalPercent / 100)
	if notional < params.MinOrderNotional {
		return Order{}, fmt.Sprintf("sizing rejected: notional %.2f below minimum order %.2f",
			notional, params.MinOrderNotional)
	}

	reserveFloor := balance.Quote * (params.MinReservePercent / 100)
	if balance.Quote < notional+reserveFloor {
		return Order{}, fmt.Sprintf("sizing rejected: quote balance %.2f cannot cover notional %.2f plus reserve floor %.2f",
			balance.Quote, notional, reserveFloor)
	}

	return Order{
		Quantity: notional / price,
		Notional: notional,
	}, ""
}
