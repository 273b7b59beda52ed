package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendSentry/internal/model"
)

// SQLiteStore persists cycles, classifications, position state, and trades
// to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %v", ErrUnavailable, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id               TEXT PRIMARY KEY,
			timestamp        INTEGER NOT NULL,
			trigger_kind     TEXT,
			price            REAL,
			base_balance     REAL,
			quote_balance    REAL,
			ema20            REAL,
			ema50            REAL,
			ema200           REAL,
			ema200_approx    INTEGER,
			rsi14            REAL,
			regime           TEXT,
			regime_source    TEXT,
			buy_threshold    REAL,
			sell_threshold   REAL,
			capital_percent  REAL,
			confidence       REAL,
			signal           TEXT,
			reason           TEXT,
			is_winter        INTEGER,
			shadow_leverage  REAL,
			action           TEXT,
			order_id         TEXT,
			quantity         REAL,
			notional         REAL,
			execution_ms     INTEGER,
			error_kind       TEXT,
			error_msg        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS regime_classifications (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at      INTEGER NOT NULL,
			regime          TEXT NOT NULL,
			buy_threshold   REAL,
			sell_threshold  REAL,
			capital_percent REAL,
			confidence      REAL,
			reasoning       TEXT,
			source          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_regimes_ts ON regime_classifications(created_at)`,

		`CREATE TABLE IF NOT EXISTS position_state (
			id              INTEGER PRIMARY KEY CHECK (id = 1),
			open            INTEGER NOT NULL,
			entry_price     REAL,
			quantity        REAL,
			entry_regime    TEXT,
			shadow_leverage REAL,
			entry_time      INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id              TEXT PRIMARY KEY,
			pair            TEXT,
			entry_price     REAL,
			exit_price      REAL,
			quantity        REAL,
			profit_loss     REAL,
			entry_regime    TEXT,
			shadow_leverage REAL,
			status          TEXT,
			opened_at       INTEGER,
			closed_at       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveCycle(rec *model.CycleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO cycles
		(id, timestamp, trigger_kind, price, base_balance, quote_balance,
		 ema20, ema50, ema200, ema200_approx, rsi14,
		 regime, regime_source, buy_threshold, sell_threshold, capital_percent, confidence,
		 signal, reason, is_winter, shadow_leverage,
		 action, order_id, quantity, notional, execution_ms, error_kind, error_msg)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Timestamp.Unix(), rec.Trigger, rec.Price, rec.BaseBalance, rec.QuoteBal,
		rec.Indicators.EMA20, rec.Indicators.EMA50, rec.Indicators.EMA200,
		boolToInt(rec.Indicators.EMA200Approximate), rec.Indicators.RSI14,
		string(rec.Regime.Regime), string(rec.Regime.Source),
		rec.Regime.BuyThreshold, rec.Regime.SellThreshold, rec.Regime.CapitalPercent, rec.Regime.Confidence,
		string(rec.Signal), rec.Reason, boolToInt(rec.IsWinter), rec.ShadowLeverage,
		string(rec.Action), rec.OrderID, rec.Quantity, rec.Notional,
		rec.ExecutionMS, string(rec.ErrorKind), rec.ErrorMsg,
	)
	if err != nil {
		return fmt.Errorf("%w: save cycle: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) SaveRegimeClassification(c model.RegimeClassification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO regime_classifications
		(created_at, regime, buy_threshold, sell_threshold, capital_percent, confidence, reasoning, source)
		VALUES (?,?,?,?,?,?,?,?)`,
		c.CreatedAt.Unix(), string(c.Regime), c.BuyThreshold, c.SellThreshold,
		c.CapitalPercent, c.Confidence, c.Reasoning, string(c.Source),
	)
	if err != nil {
		return fmt.Errorf("%w: save regime: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) LatestRegimeClassifications(n int) ([]model.RegimeClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT created_at, regime, buy_threshold, sell_threshold,
		capital_percent, confidence, reasoning, source
		FROM regime_classifications ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: query regimes: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.RegimeClassification
	for rows.Next() {
		var c model.RegimeClassification
		var createdAt int64
		var regime, source string
		if err := rows.Scan(&createdAt, &regime, &c.BuyThreshold, &c.SellThreshold,
			&c.CapitalPercent, &c.Confidence, &c.Reasoning, &source); err != nil {
			return nil, fmt.Errorf("%w: scan regime: %v", ErrUnavailable, err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		c.Regime = model.Regime(regime)
		c.Source = model.RegimeSource(source)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate regimes: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteStore) LatestPositionState() (model.PositionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT open, entry_price, quantity, entry_regime, shadow_leverage, entry_time
		FROM position_state WHERE id = 1`)

	var state model.PositionState
	var open int
	var entryRegime string
	var entryTime int64
	err := row.Scan(&open, &state.EntryPrice, &state.Quantity, &entryRegime, &state.ShadowLeverage, &entryTime)
	if err == sql.ErrNoRows {
		return model.Flat(), nil
	}
	if err != nil {
		return model.Flat(), fmt.Errorf("%w: load position state: %v", ErrUnavailable, err)
	}
	state.Open = open != 0
	state.EntryRegime = model.Regime(entryRegime)
	state.EntryTime = time.Unix(entryTime, 0)
	return state, nil
}

func (s *SQLiteStore) SavePositionState(state model.PositionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO position_state
		(id, open, entry_price, quantity, entry_regime, shadow_leverage, entry_time)
		VALUES (1,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			open = excluded.open,
			entry_price = excluded.entry_price,
			quantity = excluded.quantity,
			entry_regime = excluded.entry_regime,
			shadow_leverage = excluded.shadow_leverage,
			entry_time = excluded.entry_time`,
		boolToInt(state.Open), state.EntryPrice, state.Quantity,
		string(state.EntryRegime), state.ShadowLeverage, state.EntryTime.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: save position state: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) OpenTrade(t *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO trades
		(id, pair, entry_price, exit_price, quantity, profit_loss, entry_regime, shadow_leverage, status, opened_at, closed_at)
		VALUES (?,?,?,0,?,0,?,?,?,?,0)`,
		t.ID, t.Pair, t.EntryPrice, t.Quantity,
		string(t.EntryRegime), t.ShadowLeverage, model.TradeOpen, t.OpenedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: open trade: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) CloseTrade(id string, exitPrice, profitLoss float64, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE trades
		SET exit_price = ?, profit_loss = ?, status = ?, closed_at = ?
		WHERE id = ?`,
		exitPrice, profitLoss, model.TradeClosed, closedAt.Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: close trade: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) LatestOpenTrade() (*model.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT id, pair, entry_price, quantity, entry_regime, shadow_leverage, opened_at
		FROM trades WHERE status = ? ORDER BY opened_at DESC LIMIT 1`, model.TradeOpen)

	var t model.Trade
	var entryRegime string
	var openedAt int64
	err := row.Scan(&t.ID, &t.Pair, &t.EntryPrice, &t.Quantity, &entryRegime, &t.ShadowLeverage, &openedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load open trade: %v", ErrUnavailable, err)
	}
	t.EntryRegime = model.Regime(entryRegime)
	t.Status = model.TradeOpen
	t.OpenedAt = time.Unix(openedAt, 0)
	return &t, nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite store")
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
