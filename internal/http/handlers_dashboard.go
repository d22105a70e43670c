package http

import (
	"net/http"
	"strings"
	"time"

	"scadenze/internal/core"
	"scadenze/internal/services"
)

type totalsResponse struct {
	MonthlyTotal float64 `json:"monthly_total"`
	YearlyTotal  float64 `json:"yearly_total"`
}

type locationSummaryResponse struct {
	Location     string  `json:"location"`
	MonthlyTotal float64 `json:"monthly_total"`
	YearlyTotal  float64 `json:"yearly_total"`
	Count        int     `json:"count"`
}

type upcomingPaymentResponse struct {
	Payment   paymentResponse `json:"payment"`
	DueDate   core.Date       `json:"due_date"`
	DaysUntil int             `json:"days_until"`
}

type dashboardSummaryResponse struct {
	AsOf       core.Date                 `json:"as_of"`
	Totals     totalsResponse            `json:"totals"`
	ByLocation []locationSummaryResponse `json:"by_location"`
	Upcoming   []upcomingPaymentResponse `json:"upcoming"`
	Backfilled int                       `json:"backfilled"`
	Partial    bool                      `json:"partial,omitempty"`
}

func toDashboardSummaryResponse(now core.Date, summary services.DashboardSummary) dashboardSummaryResponse {
	resp := dashboardSummaryResponse{
		AsOf: now,
		Totals: totalsResponse{
			MonthlyTotal: summary.Totals.MonthlyTotal,
			YearlyTotal:  summary.Totals.YearlyTotal,
		},
		ByLocation: make([]locationSummaryResponse, 0, len(summary.ByLocation)),
		Upcoming:   make([]upcomingPaymentResponse, 0, len(summary.Upcoming)),
		Backfilled: summary.Backfilled,
		Partial:    summary.Partial,
	}
	for _, loc := range summary.ByLocation {
		resp.ByLocation = append(resp.ByLocation, locationSummaryResponse{
			Location:     loc.Location,
			MonthlyTotal: loc.MonthlyTotal,
			YearlyTotal:  loc.YearlyTotal,
			Count:        loc.Count,
		})
	}
	for _, up := range summary.Upcoming {
		resp.Upcoming = append(resp.Upcoming, upcomingPaymentResponse{
			Payment:   toPaymentResponse(up.Payment),
			DueDate:   up.DueDate,
			DaysUntil: up.DaysUntil,
		})
	}
	return resp
}

// handleDashboardSummary serves totals, the per-location breakdown and
// upcoming payments as of a given date (today by default). The underlying
// service backfills due entries first, so the cache is keyed by date and
// cleared on every mutation.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	now, ok := asOfDate(w, r)
	if !ok {
		return
	}

	if cached, found := s.summaryCache.Get(now.ISO()); found {
		writeJSON(w, http.StatusOK, toDashboardSummaryResponse(now, cached))
		return
	}

	summary, err := s.dashboard.Summary(r.Context(), now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// A partial summary would pin an incomplete backfill for the cache TTL;
	// serve it once and let the next request retry.
	if !summary.Partial {
		s.summaryCache.Set(now.ISO(), summary)
	}
	writeJSON(w, http.StatusOK, toDashboardSummaryResponse(now, summary))
}

// handleBackfill creates missing due entries up to a given date without
// computing the full summary.
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	upTo, ok := asOfDate(w, r)
	if !ok {
		return
	}

	created, err := s.dashboard.Backfill(r.Context(), upTo)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if created > 0 {
		s.invalidateDerived()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"up_to":   upTo.ISO(),
		"created": created,
	})
}

// asOfDate reads the optional date query parameter, defaulting to today.
func asOfDate(w http.ResponseWriter, r *http.Request) (core.Date, bool) {
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := core.ParseISO(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return core.Date{}, false
		}
		return parsed, true
	}
	return core.DateOf(time.Now()), true
}
