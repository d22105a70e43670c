// Package worker exports payment history entries to the configured sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
	"scadenze/internal/sheets"
	"scadenze/internal/storage"
)

// SyncStorage is the slice of the repository the worker needs.
type SyncStorage interface {
	GetHistoryEntry(ctx context.Context, id int64) (core.PaymentHistoryEntry, error)
	GetPayment(ctx context.Context, id int64) (core.RecurringPayment, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	MarkSynced(ctx context.Context, id int64) error
}

// SyncWorker copies history entries from the database to the export sheet.
type SyncWorker struct {
	storage   SyncStorage
	exporter  sheets.HistoryExporter
	batchSize int
}

func NewSyncWorker(storage SyncStorage, exporter sheets.HistoryExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single history sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.HistorySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "entry_id", msg.EntryID)

	return w.exportEntry(ctx, msg.EntryID)
}

// ProcessPendingEntries exports entries that were never queued or whose
// messages were lost.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		if err := w.exportEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup, with a
// larger batch to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) exportEntry(ctx context.Context, id int64) error {
	entry, err := w.storage.GetHistoryEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("get history entry %d: %w", id, err)
	}

	payment, err := w.storage.GetPayment(ctx, entry.RecurringPaymentID)
	if err != nil {
		return fmt.Errorf("get payment %d: %w", entry.RecurringPaymentID, err)
	}

	ref, err := w.exporter.AppendHistoryEntry(ctx, entry, payment.Name)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The row landed on the sheet; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully exported history entry",
		"id", id,
		"sheet_ref", ref,
		"payment", payment.Name,
		"date", entry.Date.ISO(),
		"amount_cents", entry.Amount.Cents)

	return nil
}
