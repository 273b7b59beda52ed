package gateway

import (
	"context"
	"time"

	"TrendSentry/internal/model"
)

// MockGateway returns controllable fixed data for development and testing.
type MockGateway struct {
	Series  *model.PriceSeries
	Balance model.Balance

	OHLCErr    error
	BalanceErr error
	PlaceErr   error
	QueryErr   error

	PlacedOrders []OrderResult
	QueryResult  OrderResult
	FillPrice    float64
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) GetOHLC(_ context.Context, pair string, _, count int) (*model.PriceSeries, error) {
	if m.OHLCErr != nil {
		return nil, m.OHLCErr
	}
	if m.Series != nil {
		return m.Series, nil
	}
	return &model.PriceSeries{Pair: pair, Bars: nil, FetchedAt: time.Now()}, nil
}

func (m *MockGateway) GetBalance(_ context.Context) (model.Balance, error) {
	if m.BalanceErr != nil {
		return model.Balance{}, m.BalanceErr
	}
	return m.Balance, nil
}

func (m *MockGateway) PlaceOrder(_ context.Context, side Side, quantity float64, clientOrderID string) (OrderResult, error) {
	if m.PlaceErr != nil {
		return OrderResult{}, m.PlaceErr
	}
	price := m.FillPrice
	if price == 0 && m.Series != nil {
		price = m.Series.LastClose()
	}
	result := OrderResult{
		OrderID:   clientOrderID,
		FillPrice: price,
		Quantity:  quantity,
		Filled:    true,
	}
	m.PlacedOrders = append(m.PlacedOrders, result)
	return result, nil
}

func (m *MockGateway) QueryOrder(_ context.Context, _ string) (OrderResult, error) {
	if m.QueryErr != nil {
		return OrderResult{}, m.QueryErr
	}
	return m.QueryResult, nil
}

// AscendingSeries builds count bars climbing linearly to lastClose with the
// given per-bar step (0.003 = 0.3% per bar), spaced an hour apart. Handy for
// entry-signal fixtures.
func AscendingSeries(pair string, count int, lastClose, step float64) *model.PriceSeries {
	bars := make([]model.OHLCV, count)
	start := time.Now().Add(-time.Duration(count) * time.Hour)
	for i := 0; i < count; i++ {
		c := lastClose * (1 - step*float64(count-1-i))
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c * 0.999,
			High:   c * 1.002,
			Low:    c * 0.998,
			Close:  c,
			Volume: 1000,
		}
	}
	return &model.PriceSeries{Pair: pair, Bars: bars, FetchedAt: time.Now()}
}
