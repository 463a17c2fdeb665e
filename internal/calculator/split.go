package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Share is the amount one participant owes of an expense.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// SplitEvenly divides amount among participants in whole cents.
// Leftover cents go one each to the first participants in the list, so the
// shares always add up to the amount rounded to cents.
func SplitEvenly(amount decimal.Decimal, participants []string) ([]Share, error) {
	weights := make([]int64, len(participants))
	for i := range weights {
		weights[i] = 1
	}
	return SplitByWeights(amount, participants, weights)
}

// MaxWeight bounds a single split weight.
const MaxWeight = 1_000_000

// SplitByWeights divides amount among participants proportionally to weights,
// in whole cents. Cents lost to truncation are handed out one at a time in list
// order, starting with the first participant with a non-zero weight.
func SplitByWeights(amount decimal.Decimal, participants []string, weights []int64) ([]Share, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if len(weights) != len(participants) {
		return nil, fmt.Errorf("got %d weights for %d participants", len(weights), len(participants))
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	var totalWeight int64
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weights cannot be negative")
		}
		if w > MaxWeight {
			return nil, fmt.Errorf("weights cannot exceed %d", MaxWeight)
		}
		totalWeight += w
	}
	if totalWeight == 0 {
		return nil, fmt.Errorf("weights cannot all be zero")
	}

	cents := amount.Round(2).Shift(2)
	total := decimal.NewFromInt(totalWeight)
	shares := make([]Share, len(participants))
	assigned := decimal.Zero
	for i, p := range participants {
		c, _ := cents.Mul(decimal.NewFromInt(weights[i])).QuoRem(total, 0)
		assigned = assigned.Add(c)
		shares[i] = Share{ParticipantID: p, Amount: c.Shift(-2)}
	}

	for i := 0; assigned.LessThan(cents); i = (i + 1) % len(shares) {
		if weights[i] == 0 {
			continue
		}
		shares[i].Amount = shares[i].Amount.Add(Tolerance)
		assigned = assigned.Add(decimal.NewFromInt(1))
	}

	return shares, nil
}
