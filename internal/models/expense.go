package models

import "github.com/shopspring/decimal"

// Expense is a single outlay paid by one participant and split among several.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// RoomID is the room this expense belongs to.
	RoomID string

	// PayerID is the participant who fronted the money.
	PayerID string

	// Amount is the total paid.
	Amount decimal.Decimal

	// Description is a short human-readable label (e.g., "Carne", "Carbón").
	Description string

	// Category is an optional free-form grouping (e.g., "food").
	Category string

	// Splits apportion Amount among participants. Their sum matches Amount
	// within one cent.
	Splits []ExpenseSplit

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseSplit is the part of one expense owed by one participant.
type ExpenseSplit struct {
	ExpenseID     string
	ParticipantID string
	AmountOwed    decimal.Decimal
}

// SplitsTotal returns the sum of AmountOwed across the expense's splits.
func (e *Expense) SplitsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.AmountOwed)
	}
	return total
}
