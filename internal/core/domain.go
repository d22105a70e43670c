package core

import (
	"errors"
	"strings"
)

type (
	// RecurringPayment is the template for a tracked recurring expense:
	// what it costs, how often it recurs, and where in the calendar its
	// occurrences fall. The scheduling engine only reads it; creation and
	// edits go through the persistence layer.
	RecurringPayment struct {
		ID     int64
		UserID string

		// Descriptive fields, opaque to scheduling.
		Name     string
		Company  string
		Location string
		Website  string
		Phone    string
		Bank     string

		// Cost is the expected amount per cycle.
		Cost Money

		// Periodicity is the interval in whole months between occurrences:
		// 1 = monthly, 12 = yearly.
		Periodicity int

		// PaymentMonth (1-12) and PaymentDay (1-31) anchor the first occurrence.
		PaymentMonth int
		PaymentDay   int
	}

	// PaymentHistoryEntry records a single occurrence of a recurring payment.
	// At most one entry should exist per (RecurringPaymentID, Date) pair.
	PaymentHistoryEntry struct {
		ID                 int64
		UserID             string
		RecurringPaymentID int64
		// Date is the occurrence's due date (calendar day).
		Date Date
		// Amount actually paid; may differ from the template cost.
		Amount Money
		IsPaid bool
	}
)

var (
	ErrInvalidDay         = errors.New("invalid payment day")
	ErrInvalidMonth       = errors.New("invalid payment month")
	ErrInvalidPeriodicity = errors.New("invalid periodicity")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrMissingPaymentRef  = errors.New("missing recurring payment reference")
)

func (p RecurringPayment) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := p.Cost.Validate(); err != nil {
		return err
	}
	if p.Periodicity < 1 {
		return ErrInvalidPeriodicity
	}
	if p.PaymentMonth < 1 || p.PaymentMonth > 12 {
		return ErrInvalidMonth
	}
	if p.PaymentDay < 1 || p.PaymentDay > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (e PaymentHistoryEntry) Validate() error {
	if e.RecurringPaymentID == 0 {
		return ErrMissingPaymentRef
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
