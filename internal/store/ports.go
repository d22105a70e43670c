// Package store defines the persistence ports for recurring payments and
// their history. The scheduling and aggregation services depend on these
// interfaces only; SQLite and in-memory implementations live in subpackages.
package store

import (
	"context"
	"errors"

	"scadenze/internal/core"
)

// ErrNotFound is returned when a payment or history entry does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEntry is returned when creating a history entry would violate
// the one-entry-per-(payment, date) contract.
var ErrDuplicateEntry = errors.New("duplicate history entry for date")

type (
	PaymentReader interface {
		// ListPayments returns all recurring payment templates.
		ListPayments(ctx context.Context) ([]core.RecurringPayment, error)
		GetPayment(ctx context.Context, id int64) (core.RecurringPayment, error)
	}

	PaymentWriter interface {
		CreatePayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error)
		UpdatePayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error)
		DeletePayment(ctx context.Context, id int64) error
	}

	HistoryReader interface {
		// ListHistory returns the entries for one payment, newest first.
		ListHistory(ctx context.Context, recurringPaymentID int64) ([]core.PaymentHistoryEntry, error)
		// ListAllHistory returns every history entry, newest first.
		ListAllHistory(ctx context.Context) ([]core.PaymentHistoryEntry, error)
		GetHistoryEntry(ctx context.Context, id int64) (core.PaymentHistoryEntry, error)
	}

	HistoryWriter interface {
		CreateHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error)
		UpdateHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error)
	}
)

// PaymentStore groups template persistence.
type PaymentStore interface {
	PaymentReader
	PaymentWriter
}

// HistoryStore groups occurrence persistence. Backfill depends on this.
type HistoryStore interface {
	HistoryReader
	HistoryWriter
}

// Store is the full persistence surface used by the HTTP layer.
type Store interface {
	PaymentStore
	HistoryStore
}
