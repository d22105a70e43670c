package http

import (
	"encoding/json"
	"net/http"

	"scadenze/internal/core"
)

type historyEntryRequest struct {
	UserID             string    `json:"user_id"`
	RecurringPaymentID int64     `json:"recurring_payment_id"`
	Date               core.Date `json:"date"`
	Amount             string    `json:"amount"`
	IsPaid             bool      `json:"is_paid"`
}

type historyEntryResponse struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"user_id,omitempty"`
	RecurringPaymentID int64     `json:"recurring_payment_id"`
	Date               core.Date `json:"date"`
	Amount             string    `json:"amount"`
	AmountCents        int64     `json:"amount_cents"`
	IsPaid             bool      `json:"is_paid"`
}

func toHistoryEntryResponse(e core.PaymentHistoryEntry) historyEntryResponse {
	return historyEntryResponse{
		ID:                 e.ID,
		UserID:             e.UserID,
		RecurringPaymentID: e.RecurringPaymentID,
		Date:               e.Date,
		Amount:             formatCents(e.Amount.Cents),
		AmountCents:        e.Amount.Cents,
		IsPaid:             e.IsPaid,
	}
}

// handleListHistory returns a payment's history entries, newest first.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// 404 for unknown payments rather than an empty list.
	if _, err := s.payments.GetPayment(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	entries, err := s.payments.ListHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req historyEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	entry := core.PaymentHistoryEntry{
		UserID:             sanitizeInput(req.UserID),
		RecurringPaymentID: req.RecurringPaymentID,
		Date:               req.Date,
		Amount:             core.Money{Cents: cents},
		IsPaid:             req.IsPaid,
	}

	created, err := s.payments.RecordPayment(r.Context(), entry)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, toHistoryEntryResponse(created))
}

// handleMarkPaid flips a history entry to paid, with an optional amount
// override in the body.
func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var amount *core.Money
	if req.Amount != "" {
		cents, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		amount = &core.Money{Cents: cents}
	}

	updated, err := s.payments.MarkPaid(r.Context(), id, amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusOK, toHistoryEntryResponse(updated))
}
