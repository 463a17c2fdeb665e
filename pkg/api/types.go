package api

import "github.com/shopspring/decimal"

// Room is the public view of a room.
type Room struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsLocked  bool   `json:"is_locked"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Participant is the public view of a room member. Token digests never leave the server.
type Participant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PaymentAlias string `json:"payment_alias,omitempty"`
	JoinedAt     int64  `json:"joined_at"`
}

// Split is one participant's share of an expense.
type Split struct {
	ParticipantID   string          `json:"participant_id"`
	ParticipantName string          `json:"participant_name,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
}

// Expense is a payment made by one participant on behalf of several.
type Expense struct {
	ID          string          `json:"id"`
	RoomID      string          `json:"room_id"`
	PayerID     string          `json:"payer_id"`
	PayerName   string          `json:"payer_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Splits      []Split         `json:"splits"`
	CreatedAt   int64           `json:"created_at"`
}

// Balance is a participant's position across all expenses of a room.
type Balance struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Paid          decimal.Decimal `json:"paid"`
	Owed          decimal.Decimal `json:"owed"`
	Net           decimal.Decimal `json:"net"`
}

// Transfer is a proposed payment that has not been persisted.
type Transfer struct {
	FromParticipantID string          `json:"from_participant_id"`
	FromName          string          `json:"from_name"`
	ToParticipantID   string          `json:"to_participant_id"`
	ToName            string          `json:"to_name"`
	Amount            decimal.Decimal `json:"amount"`
}

// Settlement is a persisted transfer of a locked room.
type Settlement struct {
	ID                string          `json:"id"`
	FromParticipantID string          `json:"from_participant_id"`
	FromName          string          `json:"from_name"`
	ToParticipantID   string          `json:"to_participant_id"`
	ToName            string          `json:"to_name"`
	ToPaymentAlias    string          `json:"to_payment_alias,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	IsPaid            bool            `json:"is_paid"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	PaidAt            int64           `json:"paid_at,omitempty"`
}

// RoomSummary describes one room the caller belongs to.
type RoomSummary struct {
	Room             Room   `json:"room"`
	ParticipantCount int    `json:"participant_count"`
	ExpenseCount     int    `json:"expense_count"`
	MyName           string `json:"my_name"`
	MyRole           string `json:"my_role"`
}
