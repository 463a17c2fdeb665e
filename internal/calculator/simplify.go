package calculator

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// Transfer is a payment that moves money from a debtor to a creditor.
type Transfer struct {
	From   string // Participant who owes
	To     string // Participant who is owed
	Amount decimal.Decimal
}

// party is a creditor or debtor with what it still has to receive or pay.
// order is its position in the input and breaks ties between equal amounts.
type party struct {
	id        string
	order     int
	remaining decimal.Decimal
}

// partyHeap is a max-heap on remaining, earliest order first on ties.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if c := h[i].remaining.Cmp(h[j].remaining); c != 0 {
		return c > 0
	}
	return h[i].order < h[j].order
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// Simplify turns net balances into a short list of transfers that zero them.
//
// Greedy algorithm, matching largest debt with largest credit:
//   - Round each net balance to cents. Above +0.01 is a creditor, below -0.01 a
//     debtor, anything else is already settled
//   - Pop the largest creditor and the largest debtor and move the smaller of
//     the two amounts from the debtor to the creditor
//   - Push back whoever still has at least 0.01 left
//
// Every round fully consumes at least one party, so there are at most
// (non-zero balances - 1) transfers. When two parties have the same remaining
// amount the one that comes first in balances is matched first, which makes the
// result a deterministic function of the input order. A residual left on one
// side once the other is empty (sub-cent rounding) is dropped.
func Simplify(balances []Balance) []Transfer {
	var creditors, debtors partyHeap
	for i, b := range balances {
		net := b.Net.Round(2)
		switch {
		case net.GreaterThan(Tolerance):
			creditors = append(creditors, party{id: b.ParticipantID, order: i, remaining: net})
		case net.LessThan(Tolerance.Neg()):
			debtors = append(debtors, party{id: b.ParticipantID, order: i, remaining: net.Neg()})
		}
	}
	heap.Init(&creditors)
	heap.Init(&debtors)

	transfers := []Transfer{}
	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := heap.Pop(&creditors).(party)
		debtor := heap.Pop(&debtors).(party)

		amount := decimal.Min(creditor.remaining, debtor.remaining)
		if amount.GreaterThan(Tolerance) {
			transfers = append(transfers, Transfer{
				From:   debtor.id,
				To:     creditor.id,
				Amount: amount.Round(2),
			})
		}

		creditor.remaining = creditor.remaining.Sub(amount)
		debtor.remaining = debtor.remaining.Sub(amount)

		if !creditor.remaining.LessThan(Tolerance) {
			heap.Push(&creditors, creditor)
		}
		if !debtor.remaining.LessThan(Tolerance) {
			heap.Push(&debtors, debtor)
		}
	}

	return transfers
}
