// Package core provides the domain model and the payment scheduling engine.
//
// This file contains the date projection arithmetic: given a payment's anchor
// (payment month and day) and its periodicity in months, it computes upcoming
// due dates and every due date inside an arbitrary window.
package core

import "time"

// AddMonths adds n calendar months to d, preserving the day-of-month where the
// resulting month has it. When the resulting month is shorter, the date clamps
// to that month's last day instead of overflowing into the following month:
// Jan 31 + 1 month is Feb 28 (Feb 29 in leap years), never Mar 2.
//
// Clamping compounds across successive calls. Stepping monthly from Jan 31
// yields Feb 29, Mar 29, Apr 29: each step starts from the previously computed
// date, not from the original anchor day. Existing aggregates depend on this
// exact sequence, so it must not be re-derived from the anchor.
func AddMonths(d Date, n int) Date {
	day := d.Day()
	result := NewDate(d.Year(), d.Month()+n, day)
	if result.Day() != day {
		// Normalization rolled into the next month; back up to the last
		// day of the intended month.
		result = NewDate(result.Year(), result.Month(), 0)
	}
	return result
}

// NextDueDate returns the first occurrence of p strictly after from.
// The candidate starts at (from.Year, PaymentMonth, PaymentDay) and advances
// by Periodicity months until it passes from.
func NextDueDate(p RecurringPayment, from Date) Date {
	candidate := NewDate(from.Year(), p.PaymentMonth, p.PaymentDay)
	for !candidate.After(from.Time) {
		candidate = AddMonths(candidate, p.Periodicity)
	}
	return candidate
}

// DueDatesInRange returns every occurrence of p falling in [start, end]
// inclusive, in ascending order. The result is empty when no occurrence falls
// in the window or when end precedes start.
func DueDatesInRange(p RecurringPayment, start, end Date) []Date {
	// Seed in start's year, then walk to the first occurrence >= start.
	candidate := NewDate(start.Year(), p.PaymentMonth, p.PaymentDay)
	for candidate.After(start.Time) {
		candidate = AddMonths(candidate, -p.Periodicity)
	}
	for candidate.Before(start.Time) {
		candidate = AddMonths(candidate, p.Periodicity)
	}

	var due []Date
	for !candidate.After(end.Time) {
		due = append(due, candidate)
		candidate = AddMonths(candidate, p.Periodicity)
	}
	return due
}

// DaysBetween returns the number of whole days from `from` to `to`.
// Negative when `to` precedes `from`.
func DaysBetween(from, to Date) int {
	return int(to.Sub(from.Time) / (24 * time.Hour))
}
