package models

import "github.com/shopspring/decimal"

// PaymentMethod records how a settlement was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// Settlement is a payment instruction computed when a room is locked.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// RoomID is the room this settlement belongs to.
	RoomID string

	// FromParticipantID is the debtor who has to pay.
	FromParticipantID string

	// ToParticipantID is the creditor being paid.
	ToParticipantID string

	// Amount is the payment amount, rounded to two decimals.
	Amount decimal.Decimal

	// IsPaid is set once someone marks the settlement as paid.
	IsPaid bool

	// PaymentMethod is empty until the settlement is paid.
	PaymentMethod PaymentMethod

	// PaidAt is the Unix timestamp when the settlement was marked paid.
	PaidAt int64

	// CreatedAt is the Unix timestamp when the settlement was computed.
	CreatedAt int64
}
