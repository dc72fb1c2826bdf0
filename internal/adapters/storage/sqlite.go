package storage

// sqlite.go — journal del estado del juego, sin ruido.
//
// Estrategia:
//   - El engine en memoria es la fuente de verdad; aquí solo se
//     journalizan los commits ya aplicados.
//   - Una conexión única (SQLite es single-writer).
//   - Escrituras multi-tabla (placement, settlement) en una sola
//     transacción: o se ve todo el efecto, o nada.
//   - `counters` guarda next_id y el reloj lógico; `player_stats.seq`
//     conserva el orden de inserción para los desempates del ranking.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alejandrodnm/predmarket/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    address TEXT PRIMARY KEY,
    balance INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS predictions (
    id          INTEGER PRIMARY KEY,
    owner       TEXT    NOT NULL,
    symbol      TEXT    NOT NULL,
    direction   TEXT    NOT NULL,
    stake       INTEGER NOT NULL,
    entry_price INTEGER NOT NULL,
    created_at  INTEGER NOT NULL,
    horizon     INTEGER NOT NULL,
    status      TEXT    NOT NULL DEFAULT 'ACTIVE'
);

CREATE TABLE IF NOT EXISTS counters (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS player_stats (
    address TEXT PRIMARY KEY,
    wins    INTEGER NOT NULL DEFAULT 0,
    losses  INTEGER NOT NULL DEFAULT 0,
    profit  INTEGER NOT NULL DEFAULT 0,
    seq     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_owner  ON predictions(owner);
CREATE INDEX IF NOT EXISTS idx_predictions_status ON predictions(status);
`

const (
	counterNextID = "next_id"
	counterClock  = "clock"
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y
// aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Load restores the full game state. A fresh database yields an empty
// state.
func (s *SQLiteStorage) Load(ctx context.Context) (*domain.GameState, error) {
	state := &domain.GameState{
		Accounts: make(map[string]int64),
		Stats:    make(map[string]domain.PlayerStats),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT address, balance FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("storage.Load: accounts: %w", err)
	}
	for rows.Next() {
		var addr string
		var balance int64
		if err := rows.Scan(&addr, &balance); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.Load: scan account: %w", err)
		}
		state.Accounts[addr] = balance
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.Load: accounts: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, owner, symbol, direction, stake, entry_price, created_at, horizon, status
		FROM predictions ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.Load: predictions: %w", err)
	}
	for rows.Next() {
		var p domain.Prediction
		var dir, status string
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Owner, &p.Symbol, &dir, &p.Stake,
			&p.EntryPrice, &createdAt, &p.Horizon, &status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.Load: scan prediction: %w", err)
		}
		p.Direction = domain.Direction(dir)
		p.Status = domain.Status(status)
		p.CreatedAt = domain.Instant(createdAt)
		state.Predictions = append(state.Predictions, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.Load: predictions: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT address, wins, losses, profit, seq FROM player_stats`)
	if err != nil {
		return nil, fmt.Errorf("storage.Load: stats: %w", err)
	}
	for rows.Next() {
		var st domain.PlayerStats
		if err := rows.Scan(&st.Address, &st.Wins, &st.Losses, &st.Profit, &st.Seq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.Load: scan stats: %w", err)
		}
		state.Stats[st.Address] = st
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.Load: stats: %w", err)
	}

	state.NextID, err = s.counter(ctx, counterNextID)
	if err != nil {
		return nil, err
	}
	clock, err := s.counter(ctx, counterClock)
	if err != nil {
		return nil, err
	}
	state.Clock = domain.Instant(clock)

	return state, nil
}

// SaveDeposit persists an account's new balance and the clock.
func (s *SQLiteStorage) SaveDeposit(ctx context.Context, address string, balance int64, clock domain.Instant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveDeposit: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertAccount(ctx, tx, address, balance); err != nil {
		return fmt.Errorf("storage.SaveDeposit: %w", err)
	}
	if err := upsertCounter(ctx, tx, counterClock, int64(clock)); err != nil {
		return fmt.Errorf("storage.SaveDeposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveDeposit: commit: %w", err)
	}
	return nil
}

// SavePlacement persists a new prediction, the debited balance, the id
// counter and the clock in one transaction.
func (s *SQLiteStorage) SavePlacement(ctx context.Context, p domain.Prediction, ownerBalance, nextID int64, clock domain.Instant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePlacement: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO predictions (id, owner, symbol, direction, stake, entry_price, created_at, horizon, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Owner, p.Symbol, string(p.Direction), p.Stake,
		p.EntryPrice, int64(p.CreatedAt), p.Horizon, string(p.Status),
	); err != nil {
		return fmt.Errorf("storage.SavePlacement: insert #%d: %w", p.ID, err)
	}
	if err := upsertAccount(ctx, tx, p.Owner, ownerBalance); err != nil {
		return fmt.Errorf("storage.SavePlacement: %w", err)
	}
	if err := upsertCounter(ctx, tx, counterNextID, nextID); err != nil {
		return fmt.Errorf("storage.SavePlacement: %w", err)
	}
	if err := upsertCounter(ctx, tx, counterClock, int64(clock)); err != nil {
		return fmt.Errorf("storage.SavePlacement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePlacement: commit: %w", err)
	}
	return nil
}

// SaveSettlement persists the terminal status, the credited balance
// and the owner's counters in one transaction.
func (s *SQLiteStorage) SaveSettlement(ctx context.Context, id int64, status domain.Status, ownerBalance int64, stats domain.PlayerStats, clock domain.Instant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSettlement: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE predictions SET status = ? WHERE id = ?`, string(status), id,
	); err != nil {
		return fmt.Errorf("storage.SaveSettlement: update #%d: %w", id, err)
	}
	if err := upsertAccount(ctx, tx, stats.Address, ownerBalance); err != nil {
		return fmt.Errorf("storage.SaveSettlement: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO player_stats (address, wins, losses, profit, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			wins   = excluded.wins,
			losses = excluded.losses,
			profit = excluded.profit`,
		stats.Address, stats.Wins, stats.Losses, stats.Profit, stats.Seq,
	); err != nil {
		return fmt.Errorf("storage.SaveSettlement: stats %s: %w", stats.Address, err)
	}
	if err := upsertCounter(ctx, tx, counterClock, int64(clock)); err != nil {
		return fmt.Errorf("storage.SaveSettlement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSettlement: commit: %w", err)
	}
	return nil
}

// SaveClock persists a bare clock advance.
func (s *SQLiteStorage) SaveClock(ctx context.Context, clock domain.Instant) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		counterClock, int64(clock),
	); err != nil {
		return fmt.Errorf("storage.SaveClock: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) counter(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE name = ?`, name,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: counter %q: %w", name, err)
	}
	return value, nil
}

func upsertAccount(ctx context.Context, tx *sql.Tx, address string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (address, balance) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET balance = excluded.balance`,
		address, balance,
	)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", address, err)
	}
	return nil
}

func upsertCounter(ctx context.Context, tx *sql.Tx, name string, value int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("upsert counter %s: %w", name, err)
	}
	return nil
}
