package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"TrendSentry/internal/calculator"
	"TrendSentry/internal/decision"
	"TrendSentry/internal/gateway"
	"TrendSentry/internal/model"
	"TrendSentry/internal/notifier"
	"TrendSentry/internal/regime"
	"TrendSentry/internal/sizer"
	"TrendSentry/internal/store"
)

// Config bounds one trading cycle.
type Config struct {
	Pair            string
	IntervalMinutes int
	CandleCount     int

	MinOrderNotional  float64
	MinReservePercent float64

	ReadTimeout  time.Duration // price/balance reads
	OrderTimeout time.Duration // order placement and re-query
}

// Orchestrator sequences one trading cycle: fetch, compute, classify,
// decide, size, execute, persist, notify. At most one cycle runs at a time;
// the same lock gives this struct exclusive write access to the
// PositionState.
type Orchestrator struct {
	mu sync.Mutex

	cfg      Config
	gateway  gateway.ExchangeGateway
	regimes  *regime.Cache
	store    store.Store
	notifier notifier.Notifier
	now      func() time.Time

	position    model.PositionState
	openTradeID string
}

// New builds an orchestrator and recovers the position state from the store,
// falling back to the trade ledger for databases that predate the
// position_state table.
func New(cfg Config, gw gateway.ExchangeGateway, regimes *regime.Cache, st store.Store, n notifier.Notifier, now func() time.Time) (*Orchestrator, error) {
	if now == nil {
		now = time.Now
	}
	o := &Orchestrator{
		cfg:      cfg,
		gateway:  gw,
		regimes:  regimes,
		store:    st,
		notifier: n,
		now:      now,
	}

	state, err := st.LatestPositionState()
	if err != nil {
		return nil, fmt.Errorf("recover position state: %w", err)
	}
	o.position = state

	trade, err := st.LatestOpenTrade()
	if err != nil {
		return nil, fmt.Errorf("recover open trade: %w", err)
	}
	if trade != nil {
		o.openTradeID = trade.ID
		if !o.position.Open {
			o.position = model.PositionState{
				Open:           true,
				EntryPrice:     trade.EntryPrice,
				Quantity:       trade.Quantity,
				EntryRegime:    trade.EntryRegime,
				ShadowLeverage: trade.ShadowLeverage,
				EntryTime:      trade.OpenedAt,
			}
		}
	}

	log.Info().
		Bool("position_open", o.position.Open).
		Float64("entry_price", o.position.EntryPrice).
		Msg("orchestrator initialized")
	return o, nil
}

// Position returns a copy of the current position state.
func (o *Orchestrator) Position() model.PositionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

// RunCycle executes one full trading cycle. It always returns a result and
// never panics past this boundary; every failure mode lands in the
// CycleRecord. A cycle that finds another still running is refused.
func (o *Orchestrator) RunCycle(ctx context.Context, trigger string) model.CycleResult {
	if !o.mu.TryLock() {
		log.Warn().Str("trigger", trigger).Msg("cycle refused: previous cycle still running")
		return model.CycleResult{Success: false, Action: model.ActionError, Error: model.ErrKindCycleInProgress}
	}
	defer o.mu.Unlock()

	start := o.now()
	rec := &model.CycleRecord{
		ID:        uuid.NewString(),
		Timestamp: start,
		Trigger:   trigger,
		Action:    model.ActionHeld,
		Signal:    model.SignalHold,
	}
	log.Info().Str("cycle_id", rec.ID).Str("trigger", trigger).Msg("cycle started")

	result := o.runCycle(ctx, rec)

	rec.ExecutionMS = o.now().Sub(start).Milliseconds()
	if err := o.store.SaveCycle(rec); err != nil {
		// The order (if any) already happened in the real world; never roll
		// back, just log.
		log.Error().Err(err).Str("cycle_id", rec.ID).Msg("persist cycle record failed")
		if rec.ErrorKind == model.ErrKindNone {
			rec.ErrorKind = model.ErrKindStoreFailed
		}
	}

	log.Info().
		Str("cycle_id", rec.ID).
		Str("signal", string(rec.Signal)).
		Str("action", string(rec.Action)).
		Str("error", string(rec.ErrorKind)).
		Int64("execution_ms", rec.ExecutionMS).
		Msg("cycle finished")
	return result
}

func (o *Orchestrator) runCycle(ctx context.Context, rec *model.CycleRecord) model.CycleResult {
	// Step 1: balances and candles.
	readCtx, cancel := context.WithTimeout(ctx, o.cfg.ReadTimeout)
	defer cancel()

	balance, err := o.gateway.GetBalance(readCtx)
	if err != nil {
		return o.abort(ctx, rec, model.ErrKindGateway, fmt.Sprintf("fetch balance: %v", err))
	}
	rec.BaseBalance = balance.Base
	rec.QuoteBal = balance.Quote

	series, err := o.gateway.GetOHLC(readCtx, o.cfg.Pair, o.cfg.IntervalMinutes, o.cfg.CandleCount)
	if err != nil {
		return o.abort(ctx, rec, model.ErrKindGateway, fmt.Sprintf("fetch candles: %v", err))
	}
	if len(series.Bars) < calculator.MinSeriesLen {
		return o.abort(ctx, rec, model.ErrKindInsufficientData,
			fmt.Sprintf("only %d candles available, need %d", len(series.Bars), calculator.MinSeriesLen))
	}
	rec.Price = series.LastClose()

	// Step 2: indicators.
	snapshot, err := calculator.ComputeIndicators(series)
	if err != nil {
		return o.abort(ctx, rec, model.ErrKindInsufficientData, err.Error())
	}
	rec.Indicators = snapshot

	// Step 3: regime classification. Degrades, never fails.
	classification := o.regimes.Classify(ctx, regime.AdvisoryContext{
		Pair:  o.cfg.Pair,
		Price: rec.Price,
		Date:  o.now(),
	})
	rec.Regime = classification

	// Steps 4-5: decide against the current position.
	eval := decision.Evaluate(decision.Input{
		SeriesLen:  len(series.Bars),
		Indicators: snapshot,
		Regime:     classification,
		Position:   o.position,
	})
	rec.Signal = eval.Signal
	rec.Reason = eval.Reason
	rec.IsWinter = eval.IsWinter
	rec.ShadowLeverage = eval.ShadowLeverage

	switch eval.Signal {
	case model.SignalBuy:
		return o.executeBuy(ctx, rec, balance, classification, eval)
	case model.SignalSell:
		return o.executeSell(ctx, rec, eval)
	default:
		return model.CycleResult{Success: true, Action: model.ActionHeld, Signal: eval.Signal}
	}
}

// executeBuy sizes and places the entry order. Sizing rejections downgrade
// to HOLD; the position only advances on a confirmed fill.
func (o *Orchestrator) executeBuy(ctx context.Context, rec *model.CycleRecord, balance model.Balance, cls model.RegimeClassification, eval model.Evaluation) model.CycleResult {
	order, rejectReason := sizer.Size(balance, rec.Price, sizer.RiskParams{
		CapitalPercent:    cls.CapitalPercent,
		MinOrderNotional:  o.cfg.MinOrderNotional,
		MinReservePercent: o.cfg.MinReservePercent,
	})
	if rejectReason != "" {
		rec.Signal = model.SignalHold
		rec.Action = model.ActionHeld
		rec.ErrorKind = model.ErrKindSizingRejected
		rec.ErrorMsg = rejectReason
		rec.Reason = fmt.Sprintf("%s; %s", rec.Reason, rejectReason)
		log.Warn().Str("cycle_id", rec.ID).Str("reject", rejectReason).Msg("buy downgraded to hold")
		return model.CycleResult{Success: true, Action: model.ActionHeld, Signal: model.SignalHold}
	}
	rec.Quantity = order.Quantity
	rec.Notional = order.Notional

	clientOrderID := uuid.NewString()
	fill, err := o.placeOrder(ctx, gateway.SideBuy, order.Quantity, clientOrderID)
	if err != nil {
		return o.orderFailed(ctx, rec, err)
	}

	entryPrice := fill.FillPrice
	if entryPrice == 0 {
		entryPrice = rec.Price
	}
	rec.Action = model.ActionBought
	rec.OrderID = fill.OrderID
	rec.Quantity = fill.Quantity

	o.position = model.PositionState{
		Open:           true,
		EntryPrice:     entryPrice,
		Quantity:       fill.Quantity,
		EntryRegime:    cls.Regime,
		ShadowLeverage: eval.ShadowLeverage,
		EntryTime:      o.now(),
	}
	o.openTradeID = clientOrderID
	o.persistPositionAfterFill(rec)
	if err := o.store.OpenTrade(&model.Trade{
		ID:             clientOrderID,
		Pair:           o.cfg.Pair,
		EntryPrice:     entryPrice,
		Quantity:       fill.Quantity,
		EntryRegime:    cls.Regime,
		ShadowLeverage: eval.ShadowLeverage,
		OpenedAt:       o.position.EntryTime,
	}); err != nil {
		log.Error().Err(err).Msg("record trade open failed")
	}

	o.notifier.Notify(ctx, notifier.EventBuy, notifier.FormatBuyEvent(rec))
	return model.CycleResult{Success: true, Action: model.ActionBought, Signal: model.SignalBuy}
}

// executeSell liquidates the whole position at market.
func (o *Orchestrator) executeSell(ctx context.Context, rec *model.CycleRecord, eval model.Evaluation) model.CycleResult {
	quantity := o.position.Quantity
	entryPrice := o.position.EntryPrice
	rec.Quantity = quantity

	clientOrderID := uuid.NewString()
	fill, err := o.placeOrder(ctx, gateway.SideSell, quantity, clientOrderID)
	if err != nil {
		return o.orderFailed(ctx, rec, err)
	}

	exitPrice := fill.FillPrice
	if exitPrice == 0 {
		exitPrice = rec.Price
	}
	profitLoss := (exitPrice - entryPrice) * quantity
	rec.Action = model.ActionSold
	rec.OrderID = fill.OrderID
	rec.Notional = exitPrice * quantity

	o.position = model.Flat()
	o.persistPositionAfterFill(rec)
	if o.openTradeID != "" {
		if err := o.store.CloseTrade(o.openTradeID, exitPrice, profitLoss, o.now()); err != nil {
			log.Error().Err(err).Msg("record trade close failed")
		}
		o.openTradeID = ""
	}

	o.notifier.Notify(ctx, notifier.EventSell, notifier.FormatSellEvent(rec, entryPrice, profitLoss))
	return model.CycleResult{Success: true, Action: model.ActionSold, Signal: model.SignalSell}
}

// placeOrder submits the order with a bounded timeout, detached from parent
// cancellation: an in-flight placement whose outcome is unknown must never
// be abandoned mid-call on shutdown. An ambiguous failure is resolved by
// re-querying the order by client id before giving up.
func (o *Orchestrator) placeOrder(ctx context.Context, side gateway.Side, quantity float64, clientOrderID string) (gateway.OrderResult, error) {
	orderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.OrderTimeout)
	defer cancel()

	fill, err := o.gateway.PlaceOrder(orderCtx, side, quantity, clientOrderID)
	if err == nil {
		return fill, nil
	}

	var rejected *gateway.OrderRejectedError
	if errors.As(err, &rejected) {
		// Definitive rejection, nothing to resolve.
		return gateway.OrderResult{}, err
	}

	// Timeout or transport failure: the order may or may not exist. Never
	// assume either way; ask the exchange.
	log.Warn().Err(err).Str("client_order_id", clientOrderID).Msg("order outcome ambiguous, re-querying")
	queryCtx, cancelQuery := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.OrderTimeout)
	defer cancelQuery()

	queried, queryErr := o.gateway.QueryOrder(queryCtx, clientOrderID)
	if queryErr == nil && queried.Filled {
		log.Info().Str("order_id", queried.OrderID).Msg("ambiguous order confirmed filled")
		return queried, nil
	}
	if errors.Is(queryErr, gateway.ErrOrderNotFound) {
		return gateway.OrderResult{}, fmt.Errorf("order never reached the exchange: %w", err)
	}
	if queryErr != nil {
		// Still unknown. Refuse to advance the position; the operator must
		// reconcile manually before the state machine can trust itself.
		log.Error().Err(queryErr).Str("client_order_id", clientOrderID).
			Msg("order outcome still unknown after re-query, manual reconciliation required")
		return gateway.OrderResult{}, fmt.Errorf("order outcome unknown: %w", err)
	}
	return gateway.OrderResult{}, fmt.Errorf("order found but not filled: %w", err)
}

// orderFailed ends the cycle without advancing the position state, so the
// state machine never represents a position that does not exist at the
// exchange.
func (o *Orchestrator) orderFailed(ctx context.Context, rec *model.CycleRecord, err error) model.CycleResult {
	rec.Action = model.ActionError
	rec.ErrorKind = model.ErrKindOrderFailed
	rec.ErrorMsg = err.Error()
	o.notifier.Notify(ctx, notifier.EventCycleError, notifier.FormatErrorEvent(rec))
	return model.CycleResult{Success: false, Action: model.ActionError, Signal: rec.Signal, Error: model.ErrKindOrderFailed}
}

// persistPositionAfterFill saves the advanced position state. The order is
// already live, so a store failure is logged and absorbed.
func (o *Orchestrator) persistPositionAfterFill(rec *model.CycleRecord) {
	if err := o.store.SavePositionState(o.position); err != nil {
		log.Error().Err(err).Str("cycle_id", rec.ID).Msg("persist position state failed")
		if rec.ErrorKind == model.ErrKindNone {
			rec.ErrorKind = model.ErrKindStoreFailed
			rec.ErrorMsg = err.Error()
		}
	}
}

// abort ends the cycle before any order was considered. No state changes.
func (o *Orchestrator) abort(ctx context.Context, rec *model.CycleRecord, kind model.CycleErrorKind, msg string) model.CycleResult {
	rec.Action = model.ActionError
	rec.ErrorKind = kind
	rec.ErrorMsg = msg
	log.Error().Str("cycle_id", rec.ID).Str("kind", string(kind)).Str("msg", msg).Msg("cycle aborted")
	o.notifier.Notify(ctx, notifier.EventCycleError, notifier.FormatErrorEvent(rec))
	return model.CycleResult{Success: false, Action: model.ActionError, Signal: rec.Signal, Error: kind}
}
