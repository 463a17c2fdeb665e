package api

import "github.com/shopspring/decimal"

type ListSettlementsRequest struct {
	RoomID string `json:"room_id"`
}

type ListSettlementsResponse struct {
	Settlements   []Settlement    `json:"settlements"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	PendingCount  int             `json:"pending_count"`
	PaidCount     int             `json:"paid_count"`
	RoomCode      string          `json:"room_code"`
}

type MySettlementsRequest struct {
	RoomID string `json:"room_id"`
}

// MySettlementsResponse splits a locked room's settlements by the caller's
// role in them. VirtualSettlements is only filled for admins, who settle on
// behalf of virtual participants. Totals cover unpaid settlements.
type MySettlementsResponse struct {
	IOwe               []Settlement    `json:"i_owe"`
	TheyOweMe          []Settlement    `json:"they_owe_me"`
	VirtualSettlements []Settlement    `json:"virtual_settlements,omitempty"`
	TotalIOwe          decimal.Decimal `json:"total_i_owe"`
	TotalOwedToMe      decimal.Decimal `json:"total_owed_to_me"`
	MyPaymentAlias     string          `json:"my_payment_alias,omitempty"`
}

type MarkSettlementPaidRequest struct {
	SettlementID  string `json:"settlement_id"`
	PaymentMethod string `json:"payment_method"`
}

type MarkSettlementPaidResponse struct {
	Settlement Settlement `json:"settlement"`
}
