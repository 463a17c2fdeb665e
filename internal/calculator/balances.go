// Package calculator turns a room's expenses into per-participant balances and
// a short list of payments that settles them.
//
// Everything here is a pure function of its inputs: no I/O, no shared state,
// safe to call concurrently for different rooms.
package calculator

import "github.com/shopspring/decimal"

// Tolerance is the amount under which a balance or a remaining debt counts as settled.
var Tolerance = decimal.New(1, -2)

// ExpenseForBalance is an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	PayerID string
	Amount  decimal.Decimal
	Splits  []SplitForBalance
}

// SplitForBalance is the part of an expense owed by one participant.
type SplitForBalance struct {
	ParticipantID string
	AmountOwed    decimal.Decimal
}

// Balance is one participant's position across all expenses of a room.
type Balance struct {
	ParticipantID string
	Paid          decimal.Decimal // Total fronted across all expenses
	Owed          decimal.Decimal // Total of this participant's splits
	Net           decimal.Decimal // Paid - Owed. Positive = owed money, negative = owes money
}

// Settled reports whether the balance is within Tolerance of zero.
func (b Balance) Settled() bool {
	return b.Net.Round(2).Abs().LessThanOrEqual(Tolerance)
}

// Balances holds one Balance per participant, in participant-list order.
type Balances []Balance

// ByParticipant returns the balances keyed by participant ID.
func (bs Balances) ByParticipant() map[string]Balance {
	m := make(map[string]Balance, len(bs))
	for _, b := range bs {
		m[b.ParticipantID] = b
	}
	return m
}

// Sum returns the sum of all net balances. It is zero (within rounding) whenever
// every expense's splits add up to its amount.
func (bs Balances) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, b := range bs {
		total = total.Add(b.Net)
	}
	return total
}

// CalculateBalances computes paid, owed and net amounts for every participant.
//
// Algorithm:
//   - Every participant starts at paid = owed = 0, including those with no activity
//   - For each expense: the payer's paid grows by the amount
//   - For each split: that participant's owed grows by the split amount
//   - net = paid - owed
//
// Payers and split participants missing from participantIDs are ignored, so an
// expense left behind by a removed participant never breaks the calculation.
// Duplicate participant IDs are collapsed onto their first position.
func CalculateBalances(participantIDs []string, expenses []ExpenseForBalance) Balances {
	balances := make(Balances, 0, len(participantIDs))
	index := make(map[string]int, len(participantIDs))
	for _, id := range participantIDs {
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(balances)
		balances = append(balances, Balance{
			ParticipantID: id,
			Paid:          decimal.Zero,
			Owed:          decimal.Zero,
		})
	}

	for _, expense := range expenses {
		if i, ok := index[expense.PayerID]; ok {
			balances[i].Paid = balances[i].Paid.Add(expense.Amount)
		}
		for _, split := range expense.Splits {
			if i, ok := index[split.ParticipantID]; ok {
				balances[i].Owed = balances[i].Owed.Add(split.AmountOwed)
			}
		}
	}

	for i := range balances {
		balances[i].Net = balances[i].Paid.Sub(balances[i].Owed)
	}

	return balances
}

// Settle runs the whole pipeline: balances first, then the transfers that zero them.
func Settle(participantIDs []string, expenses []ExpenseForBalance) (Balances, []Transfer) {
	balances := CalculateBalances(participantIDs, expenses)
	return balances, Simplify(balances)
}
