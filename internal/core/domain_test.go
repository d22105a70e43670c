package core

import (
	"errors"
	"testing"
)

func validPayment() RecurringPayment {
	return RecurringPayment{
		ID:           1,
		UserID:       "user-1",
		Name:         "Internet",
		Company:      "FastWeb",
		Location:     "Casa",
		Cost:         Money{Cents: 2999},
		Periodicity:  1,
		PaymentMonth: 1,
		PaymentDay:   15,
	}
}

func TestRecurringPayment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RecurringPayment)
		wantErr error
	}{
		{"valid", func(p *RecurringPayment) {}, nil},
		{"empty name", func(p *RecurringPayment) { p.Name = "  " }, ErrEmptyName},
		{"zero cost", func(p *RecurringPayment) { p.Cost = Money{} }, ErrInvalidAmount},
		{"negative cost", func(p *RecurringPayment) { p.Cost = Money{Cents: -100} }, ErrInvalidAmount},
		{"zero periodicity", func(p *RecurringPayment) { p.Periodicity = 0 }, ErrInvalidPeriodicity},
		{"month too low", func(p *RecurringPayment) { p.PaymentMonth = 0 }, ErrInvalidMonth},
		{"month too high", func(p *RecurringPayment) { p.PaymentMonth = 13 }, ErrInvalidMonth},
		{"day too low", func(p *RecurringPayment) { p.PaymentDay = 0 }, ErrInvalidDay},
		{"day too high", func(p *RecurringPayment) { p.PaymentDay = 32 }, ErrInvalidDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayment()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentHistoryEntry_Validate(t *testing.T) {
	entry := PaymentHistoryEntry{
		RecurringPaymentID: 1,
		Date:               NewDate(2024, 5, 15),
		Amount:             Money{Cents: 2999},
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Validate() valid entry = %v", err)
	}

	noRef := entry
	noRef.RecurringPaymentID = 0
	if err := noRef.Validate(); !errors.Is(err, ErrMissingPaymentRef) {
		t.Errorf("Validate() without payment ref = %v, want %v", err, ErrMissingPaymentRef)
	}

	noDate := entry
	noDate.Date = Date{}
	if err := noDate.Validate(); err == nil {
		t.Error("Validate() with zero date should fail")
	}
}

func TestDate_ISORoundTrip(t *testing.T) {
	d := NewDate(2024, 2, 29)
	if d.ISO() != "2024-02-29" {
		t.Fatalf("ISO() = %s", d.ISO())
	}
	parsed, err := ParseISO(d.ISO())
	if err != nil {
		t.Fatalf("ParseISO() error = %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Errorf("round trip mismatch: %v != %v", parsed, d)
	}
	if _, err := ParseISO("29/02/2024"); err == nil {
		t.Error("ParseISO() should reject non-ISO format")
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, 5, 9)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2024-05-09"` {
		t.Errorf("MarshalJSON() = %s", b)
	}

	var out Date
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if !out.Equal(d.Time) {
		t.Errorf("UnmarshalJSON() = %v, want %v", out, d)
	}
	if err := out.UnmarshalJSON([]byte(`42`)); err == nil {
		t.Error("UnmarshalJSON() should reject non-string JSON")
	}
}
