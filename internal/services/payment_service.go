package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
	"scadenze/internal/store"
)

// PaymentService orchestrates recurring payment and history CRUD over the
// store and notifies the export worker when history changes. The AMQP client
// is optional; when nil, mutations still succeed and export is skipped.
type PaymentService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewPaymentService(s store.Store, amqpClient *amqp.Client) *PaymentService {
	return &PaymentService{
		store:      s,
		amqpClient: amqpClient,
	}
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]core.RecurringPayment, error) {
	return s.store.ListPayments(ctx)
}

func (s *PaymentService) GetPayment(ctx context.Context, id int64) (core.RecurringPayment, error) {
	return s.store.GetPayment(ctx, id)
}

func (s *PaymentService) CreatePayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("create payment: %w", err)
	}

	slog.InfoContext(ctx, "Created recurring payment",
		"payment_id", created.ID,
		"name", created.Name,
		"periodicity", created.Periodicity)

	return created, nil
}

func (s *PaymentService) UpdatePayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	updated, err := s.store.UpdatePayment(ctx, p)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	return updated, nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, id int64) error {
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Deleted recurring payment", "payment_id", id)
	return nil
}

func (s *PaymentService) ListHistory(ctx context.Context, recurringPaymentID int64) ([]core.PaymentHistoryEntry, error) {
	return s.store.ListHistory(ctx, recurringPaymentID)
}

func (s *PaymentService) ListAllHistory(ctx context.Context) ([]core.PaymentHistoryEntry, error) {
	return s.store.ListAllHistory(ctx)
}

// RecordPayment creates a history entry for a payment and queues it for
// export. Entries marked paid are the ones the calculator trusts, so the
// referenced payment must exist.
func (s *PaymentService) RecordPayment(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if _, err := s.store.GetPayment(ctx, e.RecurringPaymentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.PaymentHistoryEntry{}, fmt.Errorf("payment %d: %w", e.RecurringPaymentID, store.ErrNotFound)
		}
		return core.PaymentHistoryEntry{}, fmt.Errorf("look up payment %d: %w", e.RecurringPaymentID, err)
	}

	created, err := s.store.CreateHistoryEntry(ctx, e)
	if err != nil {
		return core.PaymentHistoryEntry{}, fmt.Errorf("create history entry: %w", err)
	}

	s.publishSync(ctx, created.ID)
	return created, nil
}

// MarkPaid flips an existing entry to paid, optionally overriding the amount,
// and queues it for export.
func (s *PaymentService) MarkPaid(ctx context.Context, entryID int64, amount *core.Money) (core.PaymentHistoryEntry, error) {
	entry, err := s.store.GetHistoryEntry(ctx, entryID)
	if err != nil {
		return core.PaymentHistoryEntry{}, fmt.Errorf("get history entry %d: %w", entryID, err)
	}

	entry.IsPaid = true
	if amount != nil {
		entry.Amount = *amount
	}

	updated, err := s.store.UpdateHistoryEntry(ctx, entry)
	if err != nil {
		return core.PaymentHistoryEntry{}, fmt.Errorf("update history entry %d: %w", entryID, err)
	}

	slog.InfoContext(ctx, "Marked history entry paid",
		"entry_id", updated.ID,
		"payment_id", updated.RecurringPaymentID,
		"date", updated.Date.ISO(),
		"amount_cents", updated.Amount.Cents)

	s.publishSync(ctx, updated.ID)
	return updated, nil
}

func (s *PaymentService) publishSync(ctx context.Context, entryID int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishHistorySync(ctx, entryID); err != nil {
		// Export is best-effort; the entry is already persisted.
		slog.WarnContext(ctx, "Failed to publish history sync message",
			"entry_id", entryID,
			"error", err)
	}
}
