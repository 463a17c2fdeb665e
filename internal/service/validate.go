package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitroom/internal/calculator"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/pkg/api"
)

const (
	maxRoomNameLen    = 100
	maxNameLen        = 50
	maxAliasLen       = 100
	maxDescriptionLen = 255
	maxCategoryLen    = 50
)

var (
	minExpenseAmount = decimal.New(1, -2)
	maxExpenseAmount = decimal.RequireFromString("999999.99")
)

// cleanName trims and validates a participant or room name.
func cleanName(field, name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxLen {
		return "", invalidf("%s must be at most %d characters", field, maxLen)
	}
	return name, nil
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// expenseInput is the part shared by create and update requests.
type expenseInput struct {
	PayerID     string
	Amount      decimal.Decimal
	Description string
	Category    string
	Splits      []api.SplitInput
	SplitAmong  []string
	Weights     []int64
}

// buildExpense validates input against the room's participants and returns
// the expense to persist. ID and RoomID are left to the caller.
func buildExpense(in expenseInput, people roster) (*models.Expense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalidf("description is required")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, invalidf("description must be at most %d characters", maxDescriptionLen)
	}
	category := strings.TrimSpace(in.Category)
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return nil, invalidf("category must be at most %d characters", maxCategoryLen)
	}

	if in.Amount.LessThan(minExpenseAmount) || in.Amount.GreaterThan(maxExpenseAmount) {
		return nil, invalidf("amount must be between %s and %s", minExpenseAmount.StringFixed(2), maxExpenseAmount.StringFixed(2))
	}
	if !hasCents(in.Amount) {
		return nil, invalidf("amount must have at most two decimal places")
	}

	if _, ok := people[in.PayerID]; !ok {
		return nil, invalidf("payer %q is not a participant of this room", in.PayerID)
	}

	splits, err := buildSplits(in, people)
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		PayerID:     in.PayerID,
		Amount:      in.Amount,
		Description: description,
		Category:    category,
		Splits:      splits,
	}, nil
}

func buildSplits(in expenseInput, people roster) ([]models.ExpenseSplit, error) {
	switch {
	case len(in.Weights) > 0 && len(in.SplitAmong) == 0:
		return nil, invalidSplitsf("split_weights requires split_among")
	case len(in.Splits) > 0 && len(in.SplitAmong) > 0:
		return nil, invalidSplitsf("set either splits or split_among, not both")
	case len(in.SplitAmong) > 0:
		return splitAmong(in.Amount, in.SplitAmong, in.Weights, people)
	case len(in.Splits) == 0:
		return nil, invalidSplitsf("at least one split is required")
	}

	seen := make(map[string]bool, len(in.Splits))
	splits := make([]models.ExpenseSplit, 0, len(in.Splits))
	total := decimal.Zero
	for _, s := range in.Splits {
		if _, ok := people[s.ParticipantID]; !ok {
			return nil, invalidSplitsf("%q is not a participant of this room", s.ParticipantID)
		}
		if seen[s.ParticipantID] {
			return nil, invalidSplitsf("participant %q appears more than once", s.ParticipantID)
		}
		seen[s.ParticipantID] = true
		if s.Amount.IsNegative() {
			return nil, invalidSplitsf("split amounts cannot be negative")
		}
		if !hasCents(s.Amount) {
			return nil, invalidSplitsf("split amounts must have at most two decimal places")
		}
		total = total.Add(s.Amount)
		splits = append(splits, models.ExpenseSplit{ParticipantID: s.ParticipantID, AmountOwed: s.Amount})
	}

	if in.Amount.Sub(total).Abs().GreaterThan(calculator.Tolerance) {
		return nil, invalidSplitsf("splits add up to %s, expected %s", total.StringFixed(2), in.Amount.StringFixed(2))
	}
	return splits, nil
}

func splitAmong(amount decimal.Decimal, ids []string, weights []int64, people roster) ([]models.ExpenseSplit, error) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := people[id]; !ok {
			return nil, invalidSplitsf("%q is not a participant of this room", id)
		}
		if seen[id] {
			return nil, invalidSplitsf("participant %q appears more than once", id)
		}
		seen[id] = true
	}

	var shares []calculator.Share
	var err error
	if len(weights) > 0 {
		shares, err = calculator.SplitByWeights(amount, ids, weights)
	} else {
		shares, err = calculator.SplitEvenly(amount, ids)
	}
	if err != nil {
		return nil, invalidSplitsf("%v", err)
	}
	splits := make([]models.ExpenseSplit, len(shares))
	total := decimal.Zero
	for i, s := range shares {
		if s.Amount.IsNegative() {
			return nil, invalidSplitsf("split amounts cannot be negative")
		}
		total = total.Add(s.Amount)
		splits[i] = models.ExpenseSplit{ParticipantID: s.ParticipantID, AmountOwed: s.Amount}
	}
	if !total.Equal(amount) {
		return nil, invalidSplitsf("splits add up to %s, expected %s", total.StringFixed(2), amount.StringFixed(2))
	}
	return splits, nil
}
