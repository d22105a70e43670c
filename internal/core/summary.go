package core

// Totals is the aggregate expense summary across all recurring payments.
// MonthlyTotal is always YearlyTotal / 12.
type Totals struct {
	MonthlyTotal float64
	YearlyTotal  float64
}

// LocationSummary aggregates payments sharing the same location string.
type LocationSummary struct {
	Location     string
	MonthlyTotal float64
	YearlyTotal  float64
	Count        int
}

// UpcomingPayment pairs a payment with its next projected due date.
type UpcomingPayment struct {
	Payment   RecurringPayment
	DueDate   Date
	DaysUntil int
}
