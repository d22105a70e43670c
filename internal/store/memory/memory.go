// Package memory provides an in-memory store implementation, used by the
// memory backend and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"scadenze/internal/core"
	"scadenze/internal/store"
)

type Store struct {
	mu            sync.Mutex
	nextPaymentID int64
	nextEntryID   int64
	payments      []core.RecurringPayment
	history       []core.PaymentHistoryEntry
}

func New() *Store {
	return &Store{nextPaymentID: 1, nextEntryID: 1}
}

func (s *Store) ListPayments(_ context.Context) ([]core.RecurringPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.RecurringPayment(nil), s.payments...)
	return out, nil
}

func (s *Store) GetPayment(_ context.Context, id int64) (core.RecurringPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return core.RecurringPayment{}, store.ErrNotFound
}

func (s *Store) CreatePayment(_ context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextPaymentID
	s.nextPaymentID++
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == p.ID {
			s.payments[i] = p
			return p, nil
		}
	}
	return core.RecurringPayment{}, store.ErrNotFound
}

func (s *Store) DeletePayment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == id {
			s.payments = append(s.payments[:i], s.payments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListHistory(_ context.Context, recurringPaymentID int64) ([]core.PaymentHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PaymentHistoryEntry
	for _, e := range s.history {
		if e.RecurringPaymentID == recurringPaymentID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) ListAllHistory(_ context.Context) ([]core.PaymentHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.PaymentHistoryEntry(nil), s.history...)
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) GetHistoryEntry(_ context.Context, id int64) (core.PaymentHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.history {
		if e.ID == id {
			return e, nil
		}
	}
	return core.PaymentHistoryEntry{}, store.ErrNotFound
}

func (s *Store) CreateHistoryEntry(_ context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if err := e.Validate(); err != nil {
		return core.PaymentHistoryEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.history {
		if existing.RecurringPaymentID == e.RecurringPaymentID && existing.Date.ISO() == e.Date.ISO() {
			return core.PaymentHistoryEntry{}, store.ErrDuplicateEntry
		}
	}
	e.ID = s.nextEntryID
	s.nextEntryID++
	s.history = append(s.history, e)
	return e, nil
}

func (s *Store) UpdateHistoryEntry(_ context.Context, e core.PaymentHistoryEntry) (core.PaymentHistoryEntry, error) {
	if err := e.Validate(); err != nil {
		return core.PaymentHistoryEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].ID == e.ID {
			s.history[i] = e
			return e, nil
		}
	}
	return core.PaymentHistoryEntry{}, store.ErrNotFound
}

func sortNewestFirst(entries []core.PaymentHistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date.Time)
	})
}
