// Package services provides business logic and orchestration services.
//
// This file implements expense calculation: yearly/monthly totals and
// per-location grouping across recurring payments. Each payment resolves to a
// yearly cost through a dual path: the sum of actually paid history entries
// when enough of them exist in the lookback window, or a template-based
// estimate otherwise.
package services

import (
	"sort"

	"scadenze/internal/core"
)

// DefaultLookbackMonths is the trailing window over which paid-history
// sufficiency is evaluated.
const DefaultLookbackMonths = 12

// sufficiencyThreshold is the share of expected occurrences that must be
// present as paid entries before actual history is trusted over the template.
// Policy constant; tolerates missed or late entries.
const sufficiencyThreshold = 0.8

// YearlySource tags how a payment's yearly cost was resolved.
type YearlySource int

const (
	// SourceEstimated means the yearly cost was derived from the template:
	// (cost / periodicity) x 12.
	SourceEstimated YearlySource = iota
	// SourceActual means the yearly cost is the sum of paid history entries
	// in the lookback window.
	SourceActual
)

// YearlyCost is a payment's resolved yearly cost in euros, tagged with its
// source so callers can distinguish observed from estimated amounts.
type YearlyCost struct {
	Amount float64
	Source YearlySource
}

// YearlyFromHistory computes the yearly cost of p from its paid history
// entries within the lookback window ending at now. It reports ok=false when
// fewer than 80% of the expected occurrences are present, signaling the
// caller to fall back to template estimation.
func YearlyFromHistory(p core.RecurringPayment, history []core.PaymentHistoryEntry, now core.Date, lookbackMonths int) (float64, bool) {
	cutoff := core.AddMonths(now, -lookbackMonths)

	var sumCents int64
	count := 0
	for _, entry := range history {
		if entry.RecurringPaymentID != p.ID || !entry.IsPaid {
			continue
		}
		if entry.Date.Before(cutoff.Time) {
			continue
		}
		sumCents += entry.Amount.Cents
		count++
	}

	// Occurrences that should exist in the window, rounded up.
	expected := (lookbackMonths + p.Periodicity - 1) / p.Periodicity
	if float64(count) < sufficiencyThreshold*float64(expected) {
		return 0, false
	}
	return float64(sumCents) / 100.0, true
}

// ResolveYearly returns p's yearly cost, preferring actual history and
// falling back to the template estimate.
func ResolveYearly(p core.RecurringPayment, history []core.PaymentHistoryEntry, now core.Date) YearlyCost {
	if actual, ok := YearlyFromHistory(p, history, now, DefaultLookbackMonths); ok {
		return YearlyCost{Amount: actual, Source: SourceActual}
	}
	return YearlyCost{Amount: estimatedYearly(p), Source: SourceEstimated}
}

// estimatedYearly is the template fallback: (cost / periodicity) x 12,
// computed from cents to keep the common periodicities exact.
func estimatedYearly(p core.RecurringPayment) float64 {
	return float64(p.Cost.Cents) * 12 / float64(p.Periodicity) / 100.0
}

// Totals sums the resolved yearly cost of every payment.
// MonthlyTotal is YearlyTotal / 12. An empty payment list yields zero totals.
func Totals(payments []core.RecurringPayment, history []core.PaymentHistoryEntry, now core.Date) core.Totals {
	var yearly float64
	for _, p := range payments {
		yearly += ResolveYearly(p, history, now).Amount
	}
	return core.Totals{
		MonthlyTotal: yearly / 12,
		YearlyTotal:  yearly,
	}
}

// GroupByLocation accumulates resolved costs per distinct location string
// (exact, case-sensitive match). The result is sorted by monthly total
// descending; ties keep first-encountered order.
func GroupByLocation(payments []core.RecurringPayment, history []core.PaymentHistoryEntry, now core.Date) []core.LocationSummary {
	index := make(map[string]int)
	var summaries []core.LocationSummary

	for _, p := range payments {
		yearly := ResolveYearly(p, history, now).Amount
		monthly := yearly / 12

		if i, ok := index[p.Location]; ok {
			summaries[i].MonthlyTotal += monthly
			summaries[i].YearlyTotal += yearly
			summaries[i].Count++
			continue
		}
		index[p.Location] = len(summaries)
		summaries = append(summaries, core.LocationSummary{
			Location:     p.Location,
			MonthlyTotal: monthly,
			YearlyTotal:  yearly,
			Count:        1,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].MonthlyTotal > summaries[j].MonthlyTotal
	})
	return summaries
}

// UpcomingPayments projects each payment's next due date after now and keeps
// those within horizonDays, sorted soonest first.
func UpcomingPayments(payments []core.RecurringPayment, now core.Date, horizonDays int) []core.UpcomingPayment {
	var upcoming []core.UpcomingPayment
	for _, p := range payments {
		due := core.NextDueDate(p, now)
		days := core.DaysBetween(now, due)
		if days > horizonDays {
			continue
		}
		upcoming = append(upcoming, core.UpcomingPayment{
			Payment:   p,
			DueDate:   due,
			DaysUntil: days,
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntil < upcoming[j].DaysUntil
	})
	return upcoming
}
