package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scadenze/internal/core"
)

type paymentRequest struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Website      string `json:"website"`
	Phone        string `json:"phone"`
	Bank         string `json:"bank"`
	Cost         string `json:"cost"`
	Periodicity  int    `json:"periodicity"`
	PaymentMonth int    `json:"payment_month"`
	PaymentDay   int    `json:"payment_day"`
}

type paymentResponse struct {
	ID           int64  `json:"id"`
	UserID       string `json:"user_id,omitempty"`
	Name         string `json:"name"`
	Company      string `json:"company,omitempty"`
	Location     string `json:"location,omitempty"`
	Website      string `json:"website,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Bank         string `json:"bank,omitempty"`
	Cost         string `json:"cost"`
	CostCents    int64  `json:"cost_cents"`
	Periodicity  int    `json:"periodicity"`
	PaymentMonth int    `json:"payment_month"`
	PaymentDay   int    `json:"payment_day"`
}

func (req paymentRequest) toCore() (core.RecurringPayment, error) {
	cents, err := core.ParseDecimalToCents(req.Cost)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("parse cost %q: %w", req.Cost, err)
	}
	return core.RecurringPayment{
		UserID:       sanitizeInput(req.UserID),
		Name:         sanitizeInput(req.Name),
		Company:      sanitizeInput(req.Company),
		Location:     sanitizeInput(req.Location),
		Website:      sanitizeInput(req.Website),
		Phone:        sanitizeInput(req.Phone),
		Bank:         sanitizeInput(req.Bank),
		Cost:         core.Money{Cents: cents},
		Periodicity:  req.Periodicity,
		PaymentMonth: req.PaymentMonth,
		PaymentDay:   req.PaymentDay,
	}, nil
}

func toPaymentResponse(p core.RecurringPayment) paymentResponse {
	return paymentResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Company:      p.Company,
		Location:     p.Location,
		Website:      p.Website,
		Phone:        p.Phone,
		Bank:         p.Bank,
		Cost:         formatCents(p.Cost.Cents),
		CostCents:    p.Cost.Cents,
		Periodicity:  p.Periodicity,
		PaymentMonth: p.PaymentMonth,
		PaymentDay:   p.PaymentDay,
	}
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.ListPayments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	payment, err := s.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := req.toCore()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := s.payments.CreatePayment(r.Context(), payment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := req.toCore()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	payment.ID = id

	updated, err := s.payments.UpdatePayment(r.Context(), payment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusOK, toPaymentResponse(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.payments.DeletePayment(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

// handleDueDates projects every occurrence of a payment within [start, end].
func (s *Server) handleDueDates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	start, err := core.ParseISO(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := core.ParseISO(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	payment, err := s.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dates := core.DueDatesInRange(payment, start, end)
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.ISO())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payment_id": id,
		"due_dates":  out,
	})
}

// handleNextDue projects the first occurrence strictly after the given date
// (today by default).
func (s *Server) handleNextDue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	from := core.DateOf(time.Now())
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		parsed, err := core.ParseISO(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}

	payment, err := s.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	due := core.NextDueDate(payment, from)
	writeJSON(w, http.StatusOK, map[string]any{
		"payment_id": id,
		"due_date":   due.ISO(),
		"days_until": core.DaysBetween(from, due),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func formatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	out := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + out
	}
	return out
}
