// Package storage is the SQLite record store. Schema changes live in the
// embedded migrations and run on open.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tally/internal/core"
	"tally/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// runMigrations applies the embedded migrations on a dedicated connection so
// it never interferes with the main pool.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
		cents   int64
	)
	if err := row.Scan(&t.ID, &dateStr, &t.Description, &cents, &t.Category); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	t.Date = core.NewDate(parsed.Year(), parsed.Month(), parsed.Day())
	t.Amount = core.Money{Cents: cents}
	return t, nil
}

// ListTransactions implements store.TransactionStore.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, date, description, amount_cents, category
		 FROM transactions
		 ORDER BY date DESC, created_at DESC`)
}

// RecentTransactions implements store.TransactionStore.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, date, description, amount_cents, category
		 FROM transactions
		 ORDER BY date DESC, created_at DESC
		 LIMIT ?`, limit)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTransaction implements store.TransactionStore. The id is assigned
// here and never changes afterwards.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, description, amount_cents, category)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Date.Format(dateLayout), t.Description, t.Amount.Cents, string(t.Category))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return t, nil
}

// ReplaceTransaction implements store.TransactionStore: a full-field
// overwrite, no partial merge.
func (r *SQLiteRepository) ReplaceTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	t.ID = id
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, description = ?, amount_cents = ?, category = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.Date.Format(dateLayout), t.Description, t.Amount.Cents, string(t.Category), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, store.NotFound("transaction", id)
	}

	return t, nil
}

// DeleteTransaction implements store.TransactionStore.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.NotFound("transaction", id)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListBudgets implements store.BudgetStore.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			cents int64
		)
		if err := rows.Scan(&b.ID, &b.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount = core.Money{Cents: cents}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SetBudget implements store.BudgetStore. The category uniqueness invariant
// lives in the upsert: setting an existing category replaces its amount.
func (r *SQLiteRepository) SetBudget(ctx context.Context, category core.Category, amount core.Money) (core.Budget, error) {
	b := core.Budget{ID: uuid.NewString(), Category: category, Amount: amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (id, category, amount_cents)
		 VALUES (?, ?, ?)
		 ON CONFLICT(category) DO UPDATE
		 SET amount_cents = excluded.amount_cents, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, category, amount_cents`,
		b.ID, string(category), amount.Cents)

	var cents int64
	if err := row.Scan(&b.ID, &b.Category, &cents); err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	b.Amount = core.Money{Cents: cents}

	slog.InfoContext(ctx, "Budget set",
		"id", b.ID,
		"category", b.Category,
		"amount_cents", b.Amount.Cents)

	return b, nil
}

// AppendChange implements store.ChangeLog for the audit worker.
func (r *SQLiteRepository) AppendChange(ctx context.Context, entity, op, entityID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO change_log (entity, op, entity_id) VALUES (?, ?, ?)`,
		entity, op, entityID)
	if err != nil {
		return fmt.Errorf("append change: %w", err)
	}
	return nil
}
