package services

import (
	"context"
	"errors"
	"testing"

	"scadenze/internal/core"
	"scadenze/internal/store"
	"scadenze/internal/store/memory"
)

func TestGenerateDuePayments(t *testing.T) {
	ctx := context.Background()

	t.Run("bootstraps one year of entries for a payment with no history", func(t *testing.T) {
		st := memory.New()
		payment, err := st.CreatePayment(ctx, monthlyPayment(0, "Netflix", "Casa", 1599))
		if err != nil {
			t.Fatal(err)
		}

		upTo := core.NewDate(2024, 6, 15)
		created, err := NewBackfiller(st).GenerateDuePayments(ctx, []core.RecurringPayment{payment}, upTo)
		if err != nil {
			t.Fatal(err)
		}
		// Monthly on the 1st, window 2023-06-15 to 2024-06-15.
		if created != 12 {
			t.Errorf("created = %d, want 12", created)
		}

		entries, err := st.ListHistory(ctx, payment.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 12 {
			t.Fatalf("len(entries) = %d, want 12", len(entries))
		}
		for _, e := range entries {
			if e.IsPaid {
				t.Errorf("entry %s created as paid", e.Date.ISO())
			}
			if e.Amount != payment.Cost {
				t.Errorf("entry %s amount = %d cents, want %d", e.Date.ISO(), e.Amount.Cents, payment.Cost.Cents)
			}
		}
		if entries[0].Date.ISO() != "2024-06-01" {
			t.Errorf("newest entry = %s, want 2024-06-01", entries[0].Date.ISO())
		}
		if entries[len(entries)-1].Date.ISO() != "2023-07-01" {
			t.Errorf("oldest entry = %s, want 2023-07-01", entries[len(entries)-1].Date.ISO())
		}
	})

	t.Run("fills the gap since the most recent entry", func(t *testing.T) {
		st := memory.New()
		payment := monthlyPayment(0, "Gym", "Palestra", 4000)
		payment.PaymentDay = 10
		payment, err := st.CreatePayment(ctx, payment)
		if err != nil {
			t.Fatal(err)
		}

		last := paidEntry(payment.ID, core.NewDate(2024, 3, 10), 4000)
		if _, err := st.CreateHistoryEntry(ctx, last); err != nil {
			t.Fatal(err)
		}

		created, err := NewBackfiller(st).GenerateDuePayments(ctx, []core.RecurringPayment{payment}, core.NewDate(2024, 6, 15))
		if err != nil {
			t.Fatal(err)
		}
		if created != 3 {
			t.Errorf("created = %d, want 3 (April, May, June)", created)
		}

		entries, err := st.ListHistory(ctx, payment.ID)
		if err != nil {
			t.Fatal(err)
		}
		wantDates := []string{"2024-06-10", "2024-05-10", "2024-04-10", "2024-03-10"}
		if len(entries) != len(wantDates) {
			t.Fatalf("len(entries) = %d, want %d", len(entries), len(wantDates))
		}
		for i, want := range wantDates {
			if entries[i].Date.ISO() != want {
				t.Errorf("entries[%d] = %s, want %s", i, entries[i].Date.ISO(), want)
			}
		}
		// The March entry was already paid and must stay untouched.
		if !entries[3].IsPaid {
			t.Error("pre-existing paid entry lost its paid flag")
		}
	})

	t.Run("second run creates nothing", func(t *testing.T) {
		st := memory.New()
		payment, err := st.CreatePayment(ctx, monthlyPayment(0, "Netflix", "Casa", 1599))
		if err != nil {
			t.Fatal(err)
		}

		b := NewBackfiller(st)
		upTo := core.NewDate(2024, 6, 15)
		if _, err := b.GenerateDuePayments(ctx, []core.RecurringPayment{payment}, upTo); err != nil {
			t.Fatal(err)
		}
		created, err := b.GenerateDuePayments(ctx, []core.RecurringPayment{payment}, upTo)
		if err != nil {
			t.Fatal(err)
		}
		if created != 0 {
			t.Errorf("second run created = %d, want 0", created)
		}
	})

	t.Run("quarterly gap", func(t *testing.T) {
		st := memory.New()
		payment := monthlyPayment(0, "Garbage tax", "Casa", 9000)
		payment.Periodicity = 3
		payment.PaymentMonth = 2
		payment.PaymentDay = 5
		payment, err := st.CreatePayment(ctx, payment)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := st.CreateHistoryEntry(ctx, paidEntry(payment.ID, core.NewDate(2024, 2, 5), 9000)); err != nil {
			t.Fatal(err)
		}

		created, err := NewBackfiller(st).GenerateDuePayments(ctx, []core.RecurringPayment{payment}, core.NewDate(2024, 9, 1))
		if err != nil {
			t.Fatal(err)
		}
		// Due 2024-05-05 and 2024-08-05; 2024-02-05 already exists.
		if created != 2 {
			t.Errorf("created = %d, want 2", created)
		}
	})

	t.Run("store failure aborts and reports the count so far", func(t *testing.T) {
		st := memory.New()
		payment, err := st.CreatePayment(ctx, monthlyPayment(0, "Netflix", "Casa", 1599))
		if err != nil {
			t.Fatal(err)
		}

		boom := errors.New("disk full")
		flaky := &failingHistoryStore{HistoryStore: st, failAfter: 2, err: boom}

		created, err := NewBackfiller(flaky).GenerateDuePayments(ctx, []core.RecurringPayment{payment}, core.NewDate(2024, 6, 15))
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped %v", err, boom)
		}
		if created != 2 {
			t.Errorf("created = %d, want 2 before the failure", created)
		}
	})
}

// failingHistoryStore lets the first failAfter creates through, then fails.
type failingHistoryStore struct {
	store.HistoryStore
	failAfter int
	creates   int
	err       error
}

func (f *failingHistoryStore) CreateHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if f.creates >= f.failAfter {
		return core.PaymentHistoryEntry{}, f.err
	}
	f.creates++
	return f.HistoryStore.CreateHistoryEntry(ctx, e)
}
