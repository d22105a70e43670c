package services

import (
	"context"
	"errors"
	"testing"

	"scadenze/internal/core"
	"scadenze/internal/store"
	"scadenze/internal/store/memory"
)

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewPaymentService(st, nil)

	payment, err := svc.CreatePayment(ctx, monthlyPayment(0, "Netflix", "Casa", 1599))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("creates the entry", func(t *testing.T) {
		created, err := svc.RecordPayment(ctx, core.PaymentHistoryEntry{
			UserID:             "user-1",
			RecurringPaymentID: payment.ID,
			Date:               core.NewDate(2024, 6, 1),
			Amount:             core.Money{Cents: 1599},
			IsPaid:             true,
		})
		if err != nil {
			t.Fatal(err)
		}
		if created.ID == 0 {
			t.Error("created entry has no ID")
		}
	})

	t.Run("rejects an unknown payment reference", func(t *testing.T) {
		_, err := svc.RecordPayment(ctx, core.PaymentHistoryEntry{
			UserID:             "user-1",
			RecurringPaymentID: 999,
			Date:               core.NewDate(2024, 6, 1),
			Amount:             core.Money{Cents: 1599},
		})
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects a duplicate date", func(t *testing.T) {
		_, err := svc.RecordPayment(ctx, core.PaymentHistoryEntry{
			UserID:             "user-1",
			RecurringPaymentID: payment.ID,
			Date:               core.NewDate(2024, 6, 1),
			Amount:             core.Money{Cents: 1599},
		})
		if !errors.Is(err, store.ErrDuplicateEntry) {
			t.Errorf("err = %v, want ErrDuplicateEntry", err)
		}
	})
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewPaymentService(st, nil)

	payment, err := svc.CreatePayment(ctx, monthlyPayment(0, "Gym", "Palestra", 4000))
	if err != nil {
		t.Fatal(err)
	}
	entry, err := svc.RecordPayment(ctx, core.PaymentHistoryEntry{
		UserID:             "user-1",
		RecurringPaymentID: payment.ID,
		Date:               core.NewDate(2024, 6, 10),
		Amount:             core.Money{Cents: 4000},
		IsPaid:             false,
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("keeps the amount when no override is given", func(t *testing.T) {
		got, err := svc.MarkPaid(ctx, entry.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsPaid {
			t.Error("entry not marked paid")
		}
		if got.Amount.Cents != 4000 {
			t.Errorf("amount = %d, want 4000", got.Amount.Cents)
		}
	})

	t.Run("applies an amount override", func(t *testing.T) {
		got, err := svc.MarkPaid(ctx, entry.ID, &core.Money{Cents: 4500})
		if err != nil {
			t.Fatal(err)
		}
		if got.Amount.Cents != 4500 {
			t.Errorf("amount = %d, want 4500", got.Amount.Cents)
		}
	})

	t.Run("unknown entry", func(t *testing.T) {
		if _, err := svc.MarkPaid(ctx, 999, nil); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewPaymentService(st, nil)
	dash := NewDashboardService(st)

	if _, err := svc.CreatePayment(ctx, monthlyPayment(0, "Netflix", "Casa", 1599)); err != nil {
		t.Fatal(err)
	}

	now := core.NewDate(2024, 6, 15)
	summary, err := dash.Summary(ctx, now)
	if err != nil {
		t.Fatal(err)
	}

	// No history yet, so the template estimate drives the totals and the
	// bootstrap backfill fills a year of unpaid entries.
	if !almostEqual(summary.Totals.YearlyTotal, 191.88) {
		t.Errorf("yearly = %v, want 191.88", summary.Totals.YearlyTotal)
	}
	if summary.Backfilled != 12 {
		t.Errorf("backfilled = %d, want 12", summary.Backfilled)
	}
	if len(summary.ByLocation) != 1 || summary.ByLocation[0].Location != "Casa" {
		t.Errorf("by_location = %+v, want single Casa bucket", summary.ByLocation)
	}
	if len(summary.Upcoming) != 1 {
		t.Fatalf("upcoming = %d payments, want 1", len(summary.Upcoming))
	}
	if got := summary.Upcoming[0].DueDate.ISO(); got != "2024-07-01" {
		t.Errorf("next due = %s, want 2024-07-01", got)
	}

	again, err := dash.Summary(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if again.Backfilled != 0 {
		t.Errorf("second summary backfilled = %d, want 0", again.Backfilled)
	}
}

// flakyStore fails history creates after the first two succeed, for as many
// attempts as failures allows, then recovers.
type flakyStore struct {
	store.Store
	failures  int
	successes int
}

func (s *flakyStore) CreateHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if s.successes >= 2 && s.failures > 0 {
		s.failures--
		return core.PaymentHistoryEntry{}, errors.New("store unavailable")
	}
	created, err := s.Store.CreateHistoryEntry(ctx, e)
	if err == nil {
		s.successes++
	}
	return created, err
}

func TestDashboardSummaryBackfillFailure(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{Store: memory.New(), failures: 1}
	svc := NewPaymentService(st, nil)
	dash := NewDashboardService(st)

	if _, err := svc.CreatePayment(ctx, monthlyPayment(0, "Netflix", "Casa", 1599)); err != nil {
		t.Fatal(err)
	}

	now := core.NewDate(2024, 6, 15)

	summary, err := dash.Summary(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.Partial {
		t.Error("summary after aborted backfill not flagged partial")
	}
	if summary.Backfilled != 2 {
		t.Errorf("backfilled = %d, want 2 (entries created before the failure)", summary.Backfilled)
	}

	// The store recovered; the next summary picks up the remainder.
	recovered, err := dash.Summary(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if recovered.Partial {
		t.Error("recovered summary still flagged partial")
	}
	if recovered.Backfilled != 10 {
		t.Errorf("recovered backfilled = %d, want 10", recovered.Backfilled)
	}
}
