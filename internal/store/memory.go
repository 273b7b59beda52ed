package store

import (
	"sync"
	"time"

	"TrendSentry/internal/model"
)

// MemoryStore keeps everything in process memory. Used in tests and as the
// fallback when SQLite cannot be opened, so a cycle never runs without an
// audit trail at all.
type MemoryStore struct {
	mu       sync.Mutex
	cycles   []model.CycleRecord
	regimes  []model.RegimeClassification
	position *model.PositionState
	trades   map[string]*model.Trade

	// FailWith, when set, makes every method return it. Lets tests exercise
	// the store-unavailable paths.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trades: make(map[string]*model.Trade)}
}

func (s *MemoryStore) SaveCycle(rec *model.CycleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.cycles = append(s.cycles, *rec)
	return nil
}

// Cycles returns a copy of all recorded cycles, oldest first.
func (s *MemoryStore) Cycles() []model.CycleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CycleRecord, len(s.cycles))
	copy(out, s.cycles)
	return out
}

func (s *MemoryStore) SaveRegimeClassification(c model.RegimeClassification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.regimes = append(s.regimes, c)
	return nil
}

func (s *MemoryStore) LatestRegimeClassifications(n int) ([]model.RegimeClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := make([]model.RegimeClassification, 0, n)
	for i := len(s.regimes) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.regimes[i])
	}
	return out, nil
}

func (s *MemoryStore) LatestPositionState() (model.PositionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return model.Flat(), s.FailWith
	}
	if s.position == nil {
		return model.Flat(), nil
	}
	return *s.position, nil
}

func (s *MemoryStore) SavePositionState(state model.PositionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.position = &state
	return nil
}

func (s *MemoryStore) OpenTrade(t *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	trade := *t
	trade.Status = model.TradeOpen
	s.trades[t.ID] = &trade
	return nil
}

func (s *MemoryStore) CloseTrade(id string, exitPrice, profitLoss float64, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if t, ok := s.trades[id]; ok {
		t.ExitPrice = exitPrice
		t.ProfitLoss = profitLoss
		t.Status = model.TradeClosed
		t.ClosedAt = closedAt
	}
	return nil
}

func (s *MemoryStore) LatestOpenTrade() (*model.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var latest *model.Trade
	for _, t := range s.trades {
		if t.Status != model.TradeOpen {
			continue
		}
		if latest == nil || t.OpenedAt.After(latest.OpenedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	trade := *latest
	return &trade, nil
}

func (s *MemoryStore) Close() error { return nil }
