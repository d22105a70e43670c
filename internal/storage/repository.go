// Package storage implements the persistence ports on SQLite.
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
	"strings"
	"time"

	"scadenze/internal/core"
	"scadenze/internal/store"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

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

	if err := applySchema(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// applySchema brings the database up to the latest embedded migration. The
// migrator gets its own handle because the sqlite driver takes ownership of
// the connection it wraps and closes it with the migrator.
func applySchema(dbPath string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open schema connection: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("wrap schema connection: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("build migrator: %w", err)
	}

	upErr := m.Up()
	if errors.Is(upErr, migrate.ErrNoChange) {
		upErr = nil
	}
	srcErr, dbErr := m.Close()

	switch {
	case upErr != nil:
		return fmt.Errorf("apply migrations: %w", upErr)
	case srcErr != nil:
		return fmt.Errorf("close migration source: %w", srcErr)
	case dbErr != nil:
		return fmt.Errorf("close schema connection: %w", dbErr)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const paymentColumns = "id, user_id, name, company, location, website, phone, bank, cost_cents, periodicity, payment_month, payment_day"

func scanPayment(row interface{ Scan(...any) error }) (core.RecurringPayment, error) {
	var p core.RecurringPayment
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Company, &p.Location, &p.Website,
		&p.Phone, &p.Bank, &p.Cost.Cents, &p.Periodicity, &p.PaymentMonth, &p.PaymentDay)
	return p, err
}

func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.RecurringPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM recurring_payments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.RecurringPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.RecurringPayment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM recurring_payments WHERE id = ?", id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringPayment{}, store.ErrNotFound
	}
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_payments
			(user_id, name, company, location, website, phone, bank, cost_cents, periodicity, payment_month, payment_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.Company, p.Location, p.Website, p.Phone, p.Bank,
		p.Cost.Cents, p.Periodicity, p.PaymentMonth, p.PaymentDay)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("insert payment: %w", err)
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved to SQLite",
		"id", p.ID,
		"name", p.Name,
		"cost_cents", p.Cost.Cents,
		"periodicity", p.Periodicity)

	return p, nil
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE recurring_payments SET
			user_id = ?, name = ?, company = ?, location = ?, website = ?, phone = ?, bank = ?,
			cost_cents = ?, periodicity = ?, payment_month = ?, payment_day = ?
		WHERE id = ?`,
		p.UserID, p.Name, p.Company, p.Location, p.Website, p.Phone, p.Bank,
		p.Cost.Cents, p.Periodicity, p.PaymentMonth, p.PaymentDay, p.ID)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.RecurringPayment{}, store.ErrNotFound
	}
	return p, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM recurring_payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const historyColumns = "id, user_id, recurring_payment_id, date, amount_cents, is_paid"

func scanHistoryEntry(row interface{ Scan(...any) error }) (core.PaymentHistoryEntry, error) {
	var e core.PaymentHistoryEntry
	var isoDate string
	err := row.Scan(&e.ID, &e.UserID, &e.RecurringPaymentID, &isoDate, &e.Amount.Cents, &e.IsPaid)
	if err != nil {
		return core.PaymentHistoryEntry{}, err
	}
	e.Date, err = core.ParseISO(isoDate)
	if err != nil {
		return core.PaymentHistoryEntry{}, fmt.Errorf("parse stored date %q: %w", isoDate, err)
	}
	return e, nil
}

func (r *SQLiteRepository) queryHistory(ctx context.Context, query string, args ...any) ([]core.PaymentHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.PaymentHistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) ListHistory(ctx context.Context, recurringPaymentID int64) ([]core.PaymentHistoryEntry, error) {
	entries, err := r.queryHistory(ctx,
		"SELECT "+historyColumns+" FROM payment_history WHERE recurring_payment_id = ? ORDER BY date DESC",
		recurringPaymentID)
	if err != nil {
		return nil, fmt.Errorf("list history for payment %d: %w", recurringPaymentID, err)
	}
	return entries, nil
}

func (r *SQLiteRepository) ListAllHistory(ctx context.Context) ([]core.PaymentHistoryEntry, error) {
	entries, err := r.queryHistory(ctx,
		"SELECT "+historyColumns+" FROM payment_history ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("list all history: %w", err)
	}
	return entries, nil
}

func (r *SQLiteRepository) GetHistoryEntry(ctx context.Context, id int64) (core.PaymentHistoryEntry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+historyColumns+" FROM payment_history WHERE id = ?", id)
	e, err := scanHistoryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaymentHistoryEntry{}, store.ErrNotFound
	}
	if err != nil {
		return core.PaymentHistoryEntry{}, fmt.Errorf("get history entry %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if err := e.Validate(); err != nil {
		return core.PaymentHistoryEntry{}, err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_history (user_id, recurring_payment_id, date, amount_cents, is_paid)
		VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.RecurringPaymentID, e.Date.ISO(), e.Amount.Cents, e.IsPaid)
	if err != nil {
		if isUniqueViolation(err) {
			return core.PaymentHistoryEntry{}, store.ErrDuplicateEntry
		}
		return core.PaymentHistoryEntry{}, fmt.Errorf("insert history entry: %w", err)
	}

	e.ID, err = result.LastInsertId()
	if err != nil {
		return core.PaymentHistoryEntry{}, fmt.Errorf("history insert id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if err := e.Validate(); err != nil {
		return core.PaymentHistoryEntry{}, err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE payment_history SET
			user_id = ?, recurring_payment_id = ?, date = ?, amount_cents = ?, is_paid = ?, synced = 0
		WHERE id = ?`,
		e.UserID, e.RecurringPaymentID, e.Date.ISO(), e.Amount.Cents, e.IsPaid, e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.PaymentHistoryEntry{}, store.ErrDuplicateEntry
		}
		return core.PaymentHistoryEntry{}, fmt.Errorf("update history entry %d: %w", e.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.PaymentHistoryEntry{}, store.ErrNotFound
	}
	return e, nil
}

// PendingSyncEntry carries the minimum needed to queue an export.
type PendingSyncEntry struct {
	ID        int64
	CreatedAt time.Time
}

// GetPendingSyncEntries returns history entries not yet exported, oldest first.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, created_at FROM payment_history WHERE synced = 0 ORDER BY created_at LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncEntry
	for rows.Next() {
		var p PendingSyncEntry
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync entry: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced marks a history entry as exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE payment_history SET synced = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}

	slog.InfoContext(ctx, "History entry marked as synced", "id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
