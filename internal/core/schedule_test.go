package core

import (
	"testing"
)

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		start  Date
		months int
		want   string
	}{
		{
			name:   "regular month step",
			start:  NewDate(2024, 3, 15),
			months: 1,
			want:   "2024-04-15",
		},
		{
			name:   "jan 31 clamps to leap february",
			start:  NewDate(2024, 1, 31),
			months: 1,
			want:   "2024-02-29",
		},
		{
			name:   "jan 31 clamps to non-leap february",
			start:  NewDate(2023, 1, 31),
			months: 1,
			want:   "2023-02-28",
		},
		{
			name:   "year rollover",
			start:  NewDate(2024, 11, 5),
			months: 3,
			want:   "2025-02-05",
		},
		{
			name:   "negative step clamps too",
			start:  NewDate(2024, 3, 31),
			months: -1,
			want:   "2024-02-29",
		},
		{
			name:   "twelve months keeps day",
			start:  NewDate(2024, 6, 30),
			months: 12,
			want:   "2025-06-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.months)
			if got.ISO() != tt.want {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.start.ISO(), tt.months, got.ISO(), tt.want)
			}
		})
	}
}

func TestAddMonths_ClampingCompounds(t *testing.T) {
	// Stepping monthly from Jan 31 must clamp once and then stay on the 29th:
	// the step starts from the previously computed date, not the anchor day.
	d := NewDate(2024, 1, 31)
	want := []string{"2024-02-29", "2024-03-29", "2024-04-29", "2024-05-29"}

	for i, w := range want {
		d = AddMonths(d, 1)
		if d.ISO() != w {
			t.Fatalf("step %d: got %s, want %s", i+1, d.ISO(), w)
		}
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name    string
		payment RecurringPayment
		from    Date
		want    string
	}{
		{
			name:    "monthly payment later this month",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 20},
			from:    NewDate(2024, 5, 10),
			want:    "2024-05-20",
		},
		{
			name:    "monthly payment already passed this month",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 5},
			from:    NewDate(2024, 5, 10),
			want:    "2024-06-05",
		},
		{
			name:    "due date equal to from is not returned",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 10},
			from:    NewDate(2024, 5, 10),
			want:    "2024-06-10",
		},
		{
			name:    "yearly payment still ahead",
			payment: RecurringPayment{Periodicity: 12, PaymentMonth: 9, PaymentDay: 1},
			from:    NewDate(2024, 5, 10),
			want:    "2024-09-01",
		},
		{
			name:    "yearly payment already passed",
			payment: RecurringPayment{Periodicity: 12, PaymentMonth: 2, PaymentDay: 1},
			from:    NewDate(2024, 5, 10),
			want:    "2025-02-01",
		},
		{
			name:    "quarterly payment",
			payment: RecurringPayment{Periodicity: 3, PaymentMonth: 1, PaymentDay: 15},
			from:    NewDate(2024, 2, 1),
			want:    "2024-04-15",
		},
		{
			name:    "day 31 anchor clamps in short months",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 31},
			from:    NewDate(2024, 2, 1),
			want:    "2024-02-29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.payment, tt.from)
			if got.ISO() != tt.want {
				t.Errorf("NextDueDate() = %s, want %s", got.ISO(), tt.want)
			}
			if !got.After(tt.from.Time) {
				t.Errorf("NextDueDate() = %s is not strictly after %s", got.ISO(), tt.from.ISO())
			}
		})
	}
}

func TestDueDatesInRange(t *testing.T) {
	tests := []struct {
		name    string
		payment RecurringPayment
		start   Date
		end     Date
		want    []string
	}{
		{
			name:    "monthly over three months",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 15},
			start:   NewDate(2024, 3, 1),
			end:     NewDate(2024, 5, 31),
			want:    []string{"2024-03-15", "2024-04-15", "2024-05-15"},
		},
		{
			name:    "inclusive bounds",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 15},
			start:   NewDate(2024, 3, 15),
			end:     NewDate(2024, 4, 15),
			want:    []string{"2024-03-15", "2024-04-15"},
		},
		{
			name:    "quarterly spans year boundary",
			payment: RecurringPayment{Periodicity: 3, PaymentMonth: 11, PaymentDay: 10},
			start:   NewDate(2024, 10, 1),
			end:     NewDate(2025, 3, 1),
			want:    []string{"2024-11-10", "2025-02-10"},
		},
		{
			name:    "yearly with no occurrence in window",
			payment: RecurringPayment{Periodicity: 12, PaymentMonth: 9, PaymentDay: 1},
			start:   NewDate(2024, 10, 1),
			end:     NewDate(2025, 3, 1),
			want:    nil,
		},
		{
			name:    "end before start",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 15},
			start:   NewDate(2024, 5, 1),
			end:     NewDate(2024, 4, 1),
			want:    nil,
		},
		{
			name:    "day 31 compounds through short months",
			payment: RecurringPayment{Periodicity: 1, PaymentMonth: 1, PaymentDay: 31},
			start:   NewDate(2024, 1, 31),
			end:     NewDate(2024, 4, 30),
			want:    []string{"2024-01-31", "2024-02-29", "2024-03-29", "2024-04-29"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDatesInRange(tt.payment, tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("DueDatesInRange() returned %d dates, want %d (%v)", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].ISO() != w {
					t.Errorf("date[%d] = %s, want %s", i, got[i].ISO(), w)
				}
			}
			// Ascending and inside the window.
			for i := range got {
				if got[i].Before(tt.start.Time) || got[i].After(tt.end.Time) {
					t.Errorf("date[%d] = %s outside [%s, %s]", i, got[i].ISO(), tt.start.ISO(), tt.end.ISO())
				}
				if i > 0 && !got[i].After(got[i-1].Time) {
					t.Errorf("dates not strictly ascending at %d: %s then %s", i, got[i-1].ISO(), got[i].ISO())
				}
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(NewDate(2024, 5, 10), NewDate(2024, 5, 25)); got != 15 {
		t.Errorf("DaysBetween() = %d, want 15", got)
	}
	if got := DaysBetween(NewDate(2024, 5, 10), NewDate(2024, 5, 5)); got != -5 {
		t.Errorf("DaysBetween() = %d, want -5", got)
	}
}
