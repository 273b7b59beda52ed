package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"TrendSentry/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveCycleRoundTrip(t *testing.T) {
	s := newTestStore(t)
	rec := &model.CycleRecord{
		ID:        "cycle-1",
		Timestamp: time.Now(),
		Trigger:   "scheduled",
		Price:     50000,
		Signal:    model.SignalBuy,
		Reason:    "test reason",
		Action:    model.ActionBought,
		Quantity:  0.16,
		Notional:  8000,
	}
	if err := s.SaveCycle(rec); err != nil {
		t.Fatalf("save cycle: %v", err)
	}
	// Duplicate id violates the primary key and reports the store down.
	if err := s.SaveCycle(rec); !errors.Is(err, ErrUnavailable) {
		t.Errorf("duplicate cycle id should wrap ErrUnavailable, got %v", err)
	}
}

func TestSQLiteRegimeClassifications(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range []model.Regime{model.RegimeBear, model.RegimeLateral, model.RegimeBull} {
		err := s.SaveRegimeClassification(model.RegimeClassification{
			Regime:         r,
			BuyThreshold:   50,
			SellThreshold:  35,
			CapitalPercent: 75,
			Confidence:     0.8,
			Source:         model.SourceFresh,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("save classification %d: %v", i, err)
		}
	}

	got, err := s.LatestRegimeClassifications(2)
	if err != nil {
		t.Fatalf("latest classifications: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 classifications, got %d", len(got))
	}
	if got[0].Regime != model.RegimeBull || got[1].Regime != model.RegimeLateral {
		t.Errorf("expected newest first (BULL, LATERAL), got (%s, %s)", got[0].Regime, got[1].Regime)
	}
}

func TestSQLitePositionStateUpsert(t *testing.T) {
	s := newTestStore(t)

	// Empty table reads as flat.
	state, err := s.LatestPositionState()
	if err != nil {
		t.Fatalf("load empty position state: %v", err)
	}
	if state.Open {
		t.Error("empty table should read as flat")
	}

	open := model.PositionState{
		Open:           true,
		EntryPrice:     48000,
		Quantity:       0.2,
		EntryRegime:    model.RegimeBull,
		ShadowLeverage: 1.5,
		EntryTime:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SavePositionState(open); err != nil {
		t.Fatalf("save position state: %v", err)
	}
	got, err := s.LatestPositionState()
	if err != nil {
		t.Fatalf("load position state: %v", err)
	}
	if !got.Open || got.EntryPrice != 48000 || got.Quantity != 0.2 || got.EntryRegime != model.RegimeBull {
		t.Errorf("position state round trip wrong: %+v", got)
	}

	// Single-row table: the second save overwrites, not appends.
	if err := s.SavePositionState(model.Flat()); err != nil {
		t.Fatalf("overwrite position state: %v", err)
	}
	got, err = s.LatestPositionState()
	if err != nil {
		t.Fatalf("reload position state: %v", err)
	}
	if got.Open {
		t.Error("overwritten state should be flat")
	}
}

func TestSQLiteTradeLedger(t *testing.T) {
	s := newTestStore(t)

	openedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	trade := &model.Trade{
		ID:             "trade-1",
		Pair:           "BTCUSDT",
		EntryPrice:     48000,
		Quantity:       0.2,
		EntryRegime:    model.RegimeBull,
		ShadowLeverage: 1.5,
		OpenedAt:       openedAt,
	}
	if err := s.OpenTrade(trade); err != nil {
		t.Fatalf("open trade: %v", err)
	}

	got, err := s.LatestOpenTrade()
	if err != nil {
		t.Fatalf("latest open trade: %v", err)
	}
	if got == nil || got.ID != "trade-1" || got.EntryPrice != 48000 {
		t.Fatalf("open trade round trip wrong: %+v", got)
	}

	if err := s.CloseTrade("trade-1", 50000, 400, openedAt.Add(24*time.Hour)); err != nil {
		t.Fatalf("close trade: %v", err)
	}
	got, err = s.LatestOpenTrade()
	if err != nil {
		t.Fatalf("latest open trade after close: %v", err)
	}
	if got != nil {
		t.Errorf("closed trade must not show up as open, got %+v", got)
	}
}
