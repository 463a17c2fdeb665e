package api

import "github.com/shopspring/decimal"

// SplitInput assigns part of an expense to a participant.
type SplitInput struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// CreateExpenseRequest records an expense. Either Splits or SplitAmong must be
// set. SplitAmong divides the amount to the cent, evenly or, when
// SplitWeights is given, proportionally to one weight per listed participant.
type CreateExpenseRequest struct {
	RoomID       string          `json:"room_id"`
	PayerID      string          `json:"payer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Splits       []SplitInput    `json:"splits,omitempty"`
	SplitAmong   []string        `json:"split_among,omitempty"`
	SplitWeights []int64         `json:"split_weights,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// UpdateExpenseRequest replaces an expense and all of its splits.
type UpdateExpenseRequest struct {
	ExpenseID    string          `json:"expense_id"`
	PayerID      string          `json:"payer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Splits       []SplitInput    `json:"splits,omitempty"`
	SplitAmong   []string        `json:"split_among,omitempty"`
	SplitWeights []int64         `json:"split_weights,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	RoomID string `json:"room_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense       `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
}

// GetBalancesRequest asks for live balances and a preview of the settlement.
type GetBalancesRequest struct {
	RoomID string `json:"room_id"`
}

type GetBalancesResponse struct {
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}
