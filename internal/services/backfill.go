package services

import (
	"context"
	"fmt"
	"log/slog"

	"scadenze/internal/core"
	"scadenze/internal/store"
)

// bootstrapLookbackMonths is how far back entries are generated for a payment
// that has no history at all. Policy constant.
const bootstrapLookbackMonths = 12

// Backfiller creates missing history entries for occurrences that should have
// happened by a given date, so dashboards reflect payments due "as of now"
// even after the user has been away.
type Backfiller struct {
	history store.HistoryStore
}

func NewBackfiller(history store.HistoryStore) *Backfiller {
	return &Backfiller{history: history}
}

// GenerateDuePayments walks every payment and creates one unpaid history
// entry, at template cost, for each due date since the payment's most recent
// entry (or since one year before upTo when no history exists). Dates already
// present are skipped, so repeated runs with the same or a later upTo create
// nothing new.
//
// Payments are processed strictly one after the other; each payment's history
// is re-fetched from the store at the start of its pass so the duplicate check
// sees the freshest data. A store failure aborts the run and returns the
// count created so far; re-running is safe because existing dates are skipped.
// Two concurrent runs can still race each other into duplicate rows — the
// unique index on (recurring_payment_id, date) is the backstop for that.
func (b *Backfiller) GenerateDuePayments(ctx context.Context, payments []core.RecurringPayment, upTo core.Date) (int, error) {
	created := 0

	for _, payment := range payments {
		entries, err := b.history.ListHistory(ctx, payment.ID)
		if err != nil {
			return created, fmt.Errorf("list history for payment %d: %w", payment.ID, err)
		}

		// Newest first; fall back to a one-year bootstrap window.
		lastPaymentDate := core.AddMonths(upTo, -bootstrapLookbackMonths)
		if len(entries) > 0 {
			lastPaymentDate = entries[0].Date
		}

		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			seen[e.Date.ISO()] = struct{}{}
		}

		for _, due := range core.DueDatesInRange(payment, lastPaymentDate, upTo) {
			if _, ok := seen[due.ISO()]; ok {
				continue
			}
			entry := core.PaymentHistoryEntry{
				UserID:             payment.UserID,
				RecurringPaymentID: payment.ID,
				Date:               due,
				Amount:             payment.Cost,
				IsPaid:             false,
			}
			if _, err := b.history.CreateHistoryEntry(ctx, entry); err != nil {
				return created, fmt.Errorf("create history entry for payment %d on %s: %w", payment.ID, due.ISO(), err)
			}
			// Mark locally so overlapping due dates in this run are not
			// re-created.
			seen[due.ISO()] = struct{}{}
			created++

			slog.InfoContext(ctx, "Created due payment entry",
				"payment_id", payment.ID,
				"name", payment.Name,
				"date", due.ISO(),
				"amount_cents", payment.Cost.Cents)
		}
	}

	if created > 0 {
		slog.InfoContext(ctx, "Due payment backfill complete",
			"created", created,
			"payments_checked", len(payments),
			"up_to", upTo.ISO())
	}
	return created, nil
}
