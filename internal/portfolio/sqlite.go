package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLedger stores holdings in SQLite. With the default in-memory DSN the
// data lives as long as the process.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens the database and creates the holdings table.
func NewSQLiteLedger(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// A shared in-memory database disappears with its last connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS holdings (
			session_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			amount REAL NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, symbol)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create holdings table: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

func (l *SQLiteLedger) Add(ctx context.Context, session, symbol string, amount float64) (float64, error) {
	var total float64
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		held, err := balance(ctx, tx, session, symbol)
		if err != nil {
			return err
		}
		total = held + amount
		return store(ctx, tx, session, symbol, total)
	})
	return total, err
}

func (l *SQLiteLedger) Remove(ctx context.Context, session, symbol string, amount float64) (float64, bool, error) {
	var (
		held float64
		ok   bool
	)
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		held, err = balance(ctx, tx, session, symbol)
		if err != nil {
			return err
		}
		if held == 0 || held < amount {
			return nil
		}
		ok = true
		return store(ctx, tx, session, symbol, held-amount)
	})
	return held, ok, err
}

func (l *SQLiteLedger) Holdings(ctx context.Context, session string) (map[string]float64, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT symbol, amount FROM holdings WHERE session_id = ?",
		session,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			symbol string
			amount float64
		)
		if err := rows.Scan(&symbol, &amount); err != nil {
			return nil, err
		}
		out[symbol] = amount
	}
	return out, rows.Err()
}

// Close closes the database connection
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func balance(ctx context.Context, tx *sql.Tx, session, symbol string) (float64, error) {
	var amount float64
	err := tx.QueryRowContext(ctx,
		"SELECT amount FROM holdings WHERE session_id = ? AND symbol = ?",
		session, symbol,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return amount, err
}

func store(ctx context.Context, tx *sql.Tx, session, symbol string, amount float64) error {
	if amount == 0 {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM holdings WHERE session_id = ? AND symbol = ?",
			session, symbol,
		)
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO holdings (session_id, symbol, amount) VALUES (?, ?, ?)
		ON CONFLICT (session_id, symbol) DO UPDATE SET amount = excluded.amount, updated_at = CURRENT_TIMESTAMP`,
		session, symbol, amount,
	)
	return err
}
