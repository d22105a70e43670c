package services

import (
	"context"
	"fmt"
	"log/slog"

	"scadenze/internal/core"
	"scadenze/internal/store"
)

// DefaultUpcomingHorizonDays bounds the "due soon" list on the dashboard.
const DefaultUpcomingHorizonDays = 30

// DashboardSummary is the aggregated view served to the dashboard: overall
// totals, a per-location breakdown and payments due within the horizon.
type DashboardSummary struct {
	Totals     core.Totals            `json:"totals"`
	ByLocation []core.LocationSummary `json:"by_location"`
	Upcoming   []core.UpcomingPayment `json:"upcoming"`
	Backfilled int                    `json:"backfilled"`

	// Partial is set when the backfill aborted midway; the summary reflects
	// only the entries that exist and must not be reused for later requests.
	Partial bool `json:"partial,omitempty"`
}

// DashboardService builds summaries. Every summary request first backfills
// due payments up to the given date, so the totals always account for
// occurrences that came due since the last visit.
type DashboardService struct {
	store      store.Store
	backfiller *Backfiller
}

func NewDashboardService(s store.Store) *DashboardService {
	return &DashboardService{
		store:      s,
		backfiller: NewBackfiller(s),
	}
}

// Backfill creates missing due entries up to the given date.
func (d *DashboardService) Backfill(ctx context.Context, upTo core.Date) (int, error) {
	payments, err := d.store.ListPayments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list payments: %w", err)
	}
	return d.backfiller.GenerateDuePayments(ctx, payments, upTo)
}

func (d *DashboardService) Summary(ctx context.Context, now core.Date) (DashboardSummary, error) {
	payments, err := d.store.ListPayments(ctx)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("list payments: %w", err)
	}

	created, backfillErr := d.backfiller.GenerateDuePayments(ctx, payments, now)
	if backfillErr != nil {
		// The summary can still be served from what exists, flagged partial
		// so callers do not cache it; the next request retries the remainder.
		slog.WarnContext(ctx, "Due payment backfill incomplete",
			"created", created,
			"error", backfillErr)
	}

	history, err := d.store.ListAllHistory(ctx)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("list history: %w", err)
	}

	return DashboardSummary{
		Totals:     Totals(payments, history, now),
		ByLocation: GroupByLocation(payments, history, now),
		Upcoming:   UpcomingPayments(payments, now, DefaultUpcomingHorizonDays),
		Backfilled: created,
		Partial:    backfillErr != nil,
	}, nil
}
