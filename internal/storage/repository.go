package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"

	_ "modernc.org/sqlite"
)

// isoDate is the column form of dates; it sorts and compares lexically.
const isoDate = "2006-01-02"

// SQLiteRepository keeps the transaction table in SQLite. Rows carry a
// surrogate id, but callers only ever see zero-based positions derived from
// insertion order.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	format core.DateFormat
}

var (
	_ ledger.Store = (*SQLiteRepository)(nil)
	_ ledger.Sink  = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string, format core.DateFormat) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db, path: dbPath, format: format}
	if err := repo.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Initialize applies pending migrations.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	version, err := RunMigrations(r.path)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.DebugContext(ctx, "SQLite schema ready", "path", r.path, "version", version)
	return nil
}

func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (ledger.Outcome, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (date, amount, category, description) VALUES (?, ?, ?, ?)`,
		tx.Date.Format(isoDate), tx.Amount, string(tx.Category), tx.Description)
	if err != nil {
		return ledger.Success, fmt.Errorf("insert transaction: %w", err)
	}
	id, _ := res.LastInsertId()
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"category", tx.Category,
		"amount", tx.Amount)
	return ledger.Success, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, index int, tx core.Transaction) (ledger.Outcome, error) {
	id, ok, err := r.idAt(ctx, index)
	if err != nil {
		return ledger.InvalidIndex, err
	}
	if !ok {
		return ledger.InvalidIndex, nil
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, amount = ?, category = ?, description = ? WHERE id = ?`,
		tx.Date.Format(isoDate), tx.Amount, string(tx.Category), tx.Description, id)
	if err != nil {
		return ledger.Success, fmt.Errorf("update transaction: %w", err)
	}
	return ledger.Success, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, index int) (ledger.Outcome, error) {
	n, err := r.count(ctx)
	if err != nil {
		return ledger.NoData, err
	}
	if n == 0 {
		return ledger.NoData, nil
	}
	id, ok, err := r.idAt(ctx, index)
	if err != nil {
		return ledger.InvalidIndex, err
	}
	if !ok {
		return ledger.InvalidIndex, nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return ledger.Success, fmt.Errorf("delete transaction: %w", err)
	}
	return ledger.Success, nil
}

func (r *SQLiteRepository) Query(ctx context.Context, start, end string) ([]ledger.Entry, bool, error) {
	s, e, err := ledger.ParseRange(r.format, start, end)
	if err != nil {
		return nil, false, err
	}
	entries, err := r.selectEntries(ctx,
		`SELECT position, date, amount, category, description FROM (
			SELECT ROW_NUMBER() OVER (ORDER BY id) - 1 AS position, date, amount, category, description
			FROM transactions
		) WHERE date BETWEEN ? AND ? ORDER BY position`,
		s.Format(isoDate), e.Format(isoDate))
	if err != nil {
		return nil, false, err
	}
	return entries, len(entries) > 0, nil
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]ledger.Entry, error) {
	return r.selectEntries(ctx,
		`SELECT ROW_NUMBER() OVER (ORDER BY id) - 1, date, amount, category, description
		FROM transactions ORDER BY id`)
}

// ReplaceAll swaps the whole table for txs in one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, txs []core.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	stmt, err := dbtx.PrepareContext(ctx,
		`INSERT INTO transactions (date, amount, category, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, tx := range txs {
		if _, err := stmt.ExecContext(ctx, tx.Date.Format(isoDate), tx.Amount, string(tx.Category), tx.Description); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "SQLite mirror replaced", "rows", len(txs), "path", r.path)
	return nil
}

// idAt resolves a position to its row id.
func (r *SQLiteRepository) idAt(ctx context.Context, index int) (int64, bool, error) {
	n, err := r.count(ctx)
	if err != nil {
		return 0, false, err
	}
	if !ledger.ValidIndex(index, n) {
		return 0, false, nil
	}
	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM transactions ORDER BY id LIMIT 1 OFFSET ?`, index).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("resolve position %d: %w", index, err)
	}
	return id, true, nil
}

func (r *SQLiteRepository) count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) selectEntries(ctx context.Context, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			e        ledger.Entry
			date     string
			category string
		)
		if err := rows.Scan(&e.Index, &date, &e.Amount, &category, &e.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := time.Parse(isoDate, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		e.Date = core.NewDate(t.Year(), int(t.Month()), t.Day())
		e.Category = core.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return entries, nil
}
