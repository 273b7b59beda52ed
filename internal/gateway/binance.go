package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/rs/zerolog/log"

	"TrendSentry/internal/model"
)

// BinanceGateway binds ExchangeGateway to Binance spot. Public market data
// works without credentials; balance and order calls require them.
type BinanceGateway struct {
	client     *binance.Client
	pair       string
	baseAsset  string
	quoteAsset string
}

// NewBinanceGateway creates a spot gateway for one pair (e.g. BTC/USDT).
func NewBinanceGateway(apiKey, secretKey, baseAsset, quoteAsset string) *BinanceGateway {
	return &BinanceGateway{
		client:     binance.NewClient(apiKey, secretKey),
		pair:       baseAsset + quoteAsset,
		baseAsset:  baseAsset,
		quoteAsset: quoteAsset,
	}
}

func (g *BinanceGateway) Name() string { return "binance" }

// intervalString maps a candle interval in minutes to the Binance kline
// interval notation.
func intervalString(minutes int) string {
	switch minutes {
	case 1, 3, 5, 15, 30:
		return fmt.Sprintf("%dm", minutes)
	case 60:
		return "1h"
	case 120, 240, 360, 480, 720:
		return fmt.Sprintf("%dh", minutes/60)
	case 1440:
		return "1d"
	default:
		return "1h"
	}
}

func (g *BinanceGateway) GetOHLC(ctx context.Context, pair string, intervalMinutes, count int) (*model.PriceSeries, error) {
	if pair == "" {
		pair = g.pair
	}
	klines, err := g.client.NewKlinesService().
		Symbol(pair).
		Interval(intervalString(intervalMinutes)).
		Limit(count).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch klines: %v", ErrUnavailable, err)
	}

	bars := make([]model.OHLCV, 0, len(klines))
	for _, k := range klines {
		o, _ := strconv.ParseFloat(k.Open, 64)
		h, _ := strconv.ParseFloat(k.High, 64)
		l, _ := strconv.ParseFloat(k.Low, 64)
		c, _ := strconv.ParseFloat(k.Close, 64)
		v, _ := strconv.ParseFloat(k.Volume, 64)
		bars = append(bars, model.OHLCV{
			Time:   time.UnixMilli(k.OpenTime),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return &model.PriceSeries{Pair: pair, Bars: bars, FetchedAt: time.Now()}, nil
}

func (g *BinanceGateway) GetBalance(ctx context.Context) (model.Balance, error) {
	account, err := g.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return model.Balance{}, fmt.Errorf("%w: fetch account: %v", ErrUnavailable, err)
	}

	var bal model.Balance
	for _, b := range account.Balances {
		free, _ := strconv.ParseFloat(b.Free, 64)
		switch b.Asset {
		case g.baseAsset:
			bal.Base = free
		case g.quoteAsset:
			bal.Quote = free
		}
	}
	return bal, nil
}

func (g *BinanceGateway) PlaceOrder(ctx context.Context, side Side, quantity float64, clientOrderID string) (OrderResult, error) {
	binanceSide := binance.SideTypeBuy
	if side == SideSell {
		binanceSide = binance.SideTypeSell
	}

	order, err := g.client.NewCreateOrderService().
		Symbol(g.pair).
		Side(binanceSide).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(quantity, 'f', 6, 64)).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return OrderResult{}, classifyOrderError(err)
	}

	result := OrderResult{
		OrderID:  strconv.FormatInt(order.OrderID, 10),
		Filled:   order.Status == binance.OrderStatusTypeFilled,
		Quantity: quantity,
	}
	// Average the fills for the effective price.
	var qty, quote float64
	for _, f := range order.Fills {
		fp, _ := strconv.ParseFloat(f.Price, 64)
		fq, _ := strconv.ParseFloat(f.Quantity, 64)
		qty += fq
		quote += fp * fq
	}
	if qty > 0 {
		result.FillPrice = quote / qty
		result.Quantity = qty
	}

	log.Info().
		Str("pair", g.pair).
		Str("side", string(side)).
		Str("order_id", result.OrderID).
		Float64("quantity", result.Quantity).
		Float64("fill_price", result.FillPrice).
		Msg("order placed")
	return result, nil
}

func (g *BinanceGateway) QueryOrder(ctx context.Context, clientOrderID string) (OrderResult, error) {
	order, err := g.client.NewGetOrderService().
		Symbol(g.pair).
		OrigClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == -2013 {
			// Order does not exist: the placement never reached the book.
			return OrderResult{}, ErrOrderNotFound
		}
		return OrderResult{}, fmt.Errorf("%w: query order: %v", ErrUnavailable, err)
	}

	executed, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)
	cumQuote, _ := strconv.ParseFloat(order.CummulativeQuoteQuantity, 64)
	result := OrderResult{
		OrderID:  strconv.FormatInt(order.OrderID, 10),
		Filled:   order.Status == binance.OrderStatusTypeFilled,
		Quantity: executed,
	}
	if executed > 0 {
		result.FillPrice = cumQuote / executed
	}
	return result, nil
}

// classifyOrderError separates definitive exchange rejections from failures
// that leave the order outcome unknown. Server-side Binance error codes and
// transport failures wrap ErrUnavailable so the caller re-queries by client
// order id instead of assuming the order never happened.
func classifyOrderError(err error) error {
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		// Timeout, cancellation, or transport failure: outcome unknown.
		return fmt.Errorf("%w: place order: %v", ErrUnavailable, err)
	}
	switch apiErr.Code {
	case -1000, -1001, -1006, -1007, -1008, -1016:
		// UNKNOWN, DISCONNECTED, UNEXPECTED_RESP, TIMEOUT, SERVER_BUSY,
		// SERVICE_SHUTTING_DOWN: execution status unknown per the API docs.
		return fmt.Errorf("%w: place order: %v", ErrUnavailable, err)
	}
	return &OrderRejectedError{Reason: apiErr.Error()}
}
