package gateway

import (
	"context"
	"errors"
	"fmt"

	"TrendSentry/internal/model"
)

// Side of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ErrUnavailable covers network, timeout, and auth failures talking to the
// exchange. Distinct from an explicit rejection: an unavailable gateway
// leaves the order outcome unknown.
var ErrUnavailable = errors.New("exchange gateway unavailable")

// ErrOrderNotFound is returned by QueryOrder when the exchange has no order
// for the given client id, meaning an ambiguous placement never went through.
var ErrOrderNotFound = errors.New("order not found")

// OrderRejectedError is an explicit, definitive rejection by the exchange.
type OrderRejectedError struct {
	Reason string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Reason)
}

// OrderResult reports a placed (or re-queried) order.
type OrderResult struct {
	OrderID   string
	FillPrice float64
	Quantity  float64
	Filled    bool
}

// ExchangeGateway is the core's view of the exchange. Implementations must
// bound every call with the supplied context; an empty or short OHLC result
// means insufficient data, never zero signal.
type ExchangeGateway interface {
	GetOHLC(ctx context.Context, pair string, intervalMinutes, count int) (*model.PriceSeries, error)
	GetBalance(ctx context.Context) (model.Balance, error)
	// PlaceOrder submits a market order tagged with clientOrderID so an
	// ambiguous outcome can later be resolved via QueryOrder.
	PlaceOrder(ctx context.Context, side Side, quantity float64, clientOrderID string) (OrderResult, error)
	QueryOrder(ctx context.Context, clientOrderID string) (OrderResult, error)
	Name() string
}
