package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"TrendSentry/internal/model"
)

// PriceSource is the slice of the exchange a paper gateway still needs for
// real: market data. The Binance gateway serves it without credentials.
type PriceSource interface {
	GetOHLC(ctx context.Context, pair string, intervalMinutes, count int) (*model.PriceSeries, error)
}

// paperWallet is the simulated balance state persisted between runs.
type paperWallet struct {
	Base      float64   `json:"base_balance"`
	Quote     float64   `json:"quote_balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaperGateway simulates balances and fills against live market data.
// Selected when no exchange credentials are configured.
type PaperGateway struct {
	mu         sync.Mutex
	prices     PriceSource
	walletPath string
	wallet     paperWallet
	lastPrice  float64
	orders     map[string]OrderResult
}

// NewPaperGateway loads (or seeds) the wallet file and wraps the given
// price source.
func NewPaperGateway(prices PriceSource, walletPath string, startingQuote float64) (*PaperGateway, error) {
	g := &PaperGateway{
		prices:     prices,
		walletPath: walletPath,
		wallet:     paperWallet{Quote: startingQuote},
		orders:     make(map[string]OrderResult),
	}
	data, err := os.ReadFile(walletPath)
	if err == nil {
		if err := json.Unmarshal(data, &g.wallet); err != nil {
			return nil, fmt.Errorf("parse paper wallet: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read paper wallet: %w", err)
	}
	return g, nil
}

func (g *PaperGateway) Name() string { return "paper" }

func (g *PaperGateway) GetOHLC(ctx context.Context, pair string, intervalMinutes, count int) (*model.PriceSeries, error) {
	series, err := g.prices.GetOHLC(ctx, pair, intervalMinutes, count)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.lastPrice = series.LastClose()
	g.mu.Unlock()
	return series, nil
}

func (g *PaperGateway) GetBalance(_ context.Context) (model.Balance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.Balance{Base: g.wallet.Base, Quote: g.wallet.Quote}, nil
}

// PlaceOrder fills instantly at the last close seen by GetOHLC this cycle.
func (g *PaperGateway) PlaceOrder(_ context.Context, side Side, quantity float64, clientOrderID string) (OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lastPrice <= 0 {
		return OrderResult{}, &OrderRejectedError{Reason: "no market price seen this cycle"}
	}
	notional := quantity * g.lastPrice

	switch side {
	case SideBuy:
		if g.wallet.Quote < notional {
			return OrderResult{}, &OrderRejectedError{
				Reason: fmt.Sprintf("insufficient quote balance %.2f for notional %.2f", g.wallet.Quote, notional),
			}
		}
		g.wallet.Quote -= notional
		g.wallet.Base += quantity
	case SideSell:
		if g.wallet.Base < quantity {
			return OrderResult{}, &OrderRejectedError{
				Reason: fmt.Sprintf("insufficient base balance %.8f for quantity %.8f", g.wallet.Base, quantity),
			}
		}
		g.wallet.Base -= quantity
		g.wallet.Quote += notional
	default:
		return OrderResult{}, &OrderRejectedError{Reason: "unknown order side"}
	}

	result := OrderResult{
		OrderID:   clientOrderID,
		FillPrice: g.lastPrice,
		Quantity:  quantity,
		Filled:    true,
	}
	g.orders[clientOrderID] = result
	if err := g.saveWallet(); err != nil {
		log.Error().Err(err).Msg("save paper wallet")
	}

	log.Info().
		Str("side", string(side)).
		Float64("quantity", quantity).
		Float64("fill_price", g.lastPrice).
		Float64("quote_balance", g.wallet.Quote).
		Msg("paper order filled")
	return result, nil
}

func (g *PaperGateway) QueryOrder(_ context.Context, clientOrderID string) (OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if result, ok := g.orders[clientOrderID]; ok {
		return result, nil
	}
	return OrderResult{}, ErrOrderNotFound
}

func (g *PaperGateway) saveWallet() error {
	g.wallet.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(g.wallet, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.walletPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(g.walletPath, data, 0644)
}
