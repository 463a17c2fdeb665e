package calculator

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transfersAsStrings(ts []Transfer) []string {
	out := make([]string, len(ts))
	for i, tr := range ts {
		out[i] = fmt.Sprintf("%s->%s %s", tr.From, tr.To, tr.Amount.StringFixed(2))
	}
	return out
}

func netBalances(pairs ...string) []Balance {
	var bs []Balance
	for i := 0; i+1 < len(pairs); i += 2 {
		bs = append(bs, Balance{ParticipantID: pairs[i], Net: d(pairs[i+1])})
	}
	return bs
}

func TestSettle_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		expenses []ExpenseForBalance
		want     []string
	}{
		{
			name:     "one payer, even split",
			expenses: []ExpenseForBalance{expense("A", "300", "A", "100", "B", "100", "C", "100")},
			want:     []string{"B->A 100.00", "C->A 100.00"},
		},
		{
			name: "one debtor drained against largest creditor first",
			expenses: []ExpenseForBalance{
				expense("A", "90", "A", "30", "B", "30", "C", "30"),
				expense("B", "60", "A", "20", "B", "20", "C", "20"),
			},
			want: []string{"C->A 40.00", "C->B 10.00"},
		},
		{
			name: "everyone paid their own share",
			expenses: []ExpenseForBalance{
				expense("A", "30", "A", "10", "B", "10", "C", "10"),
				expense("B", "30", "A", "10", "B", "10", "C", "10"),
				expense("C", "30", "A", "10", "B", "10", "C", "10"),
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, transfers := Settle([]string{"A", "B", "C"}, tt.expenses)
			assert.Equal(t, tt.want, transfersAsStrings(transfers))
		})
	}
}

func TestSimplify_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		balances []Balance
		want     []string
	}{
		{
			name:     "empty input",
			balances: nil,
			want:     []string{},
		},
		{
			name:     "all within a cent of zero",
			balances: netBalances("A", "0.01", "B", "-0.01", "C", "0.004"),
			want:     []string{},
		},
		{
			name:     "rounding happens before classification",
			balances: netBalances("A", "0.014", "B", "-0.014"),
			want:     []string{},
		},
		{
			name:     "ties broken by input order",
			balances: netBalances("D1", "-50", "D2", "-50", "C1", "50", "C2", "50"),
			want:     []string{"D1->C1 50.00", "D2->C2 50.00"},
		},
		{
			name:     "ties follow input order when reversed",
			balances: netBalances("C2", "50", "C1", "50", "D2", "-50", "D1", "-50"),
			want:     []string{"D2->C2 50.00", "D1->C1 50.00"},
		},
		{
			name:     "one cent residual is dropped",
			balances: netBalances("A", "10.01", "B", "-10"),
			want:     []string{"B->A 10.00"},
		},
		{
			name:     "amounts are rounded to cents",
			balances: netBalances("A", "33.333", "B", "-33.333"),
			want:     []string{"B->A 33.33"},
		},
		{
			name:     "largest debtor against largest creditor",
			balances: netBalances("A", "70", "B", "30", "C", "-20", "D", "-80"),
			want:     []string{"D->A 70.00", "C->B 20.00", "D->B 10.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transfersAsStrings(Simplify(tt.balances)))
		})
	}
}

func TestSimplify_DoesNotMutateInput(t *testing.T) {
	balances := netBalances("A", "20", "B", "-20")
	Simplify(balances)
	assertDecimal(t, "20", balances[0].Net)
	assertDecimal(t, "-20", balances[1].Net)
}

// randomRoom builds a room whose splits are whole units, so every balance and
// every intermediate remaining amount is exact.
func randomRoom(r *rand.Rand) ([]string, []ExpenseForBalance) {
	n := 2 + r.IntN(9)
	participants := make([]string, n)
	for i := range participants {
		participants[i] = fmt.Sprintf("p%d", i)
	}

	expenses := make([]ExpenseForBalance, r.IntN(12))
	for i := range expenses {
		e := ExpenseForBalance{PayerID: participants[r.IntN(n)]}
		total := decimal.Zero
		for _, p := range participants {
			if r.IntN(3) == 0 {
				continue
			}
			owed := decimal.NewFromInt(int64(1 + r.IntN(200)))
			total = total.Add(owed)
			e.Splits = append(e.Splits, SplitForBalance{ParticipantID: p, AmountOwed: owed})
		}
		e.Amount = total
		expenses[i] = e
	}
	return participants, expenses
}

func TestSimplify_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 2024))

	for round := 0; round < 500; round++ {
		participants, expenses := randomRoom(r)
		balances := CalculateBalances(participants, expenses)
		transfers := Simplify(balances)

		require.True(t, balances.Sum().IsZero(), "round %d: balances do not sum to zero", round)

		out := make(map[string]decimal.Decimal)
		in := make(map[string]decimal.Decimal)
		for _, tr := range transfers {
			require.True(t, tr.Amount.GreaterThan(Tolerance), "round %d: non-positive transfer %v", round, tr)
			require.NotEqual(t, tr.From, tr.To, "round %d: self transfer", round)
			out[tr.From] = out[tr.From].Add(tr.Amount)
			in[tr.To] = in[tr.To].Add(tr.Amount)
		}

		nonZero := 0
		for _, b := range balances {
			if !b.Settled() {
				nonZero++
			}
			wantOut := decimal.Max(decimal.Zero, b.Net.Neg())
			wantIn := decimal.Max(decimal.Zero, b.Net)
			require.True(t, out[b.ParticipantID].Sub(wantOut).Abs().LessThanOrEqual(Tolerance),
				"round %d: %s pays %s, owes %s", round, b.ParticipantID, out[b.ParticipantID], wantOut)
			require.True(t, in[b.ParticipantID].Sub(wantIn).Abs().LessThanOrEqual(Tolerance),
				"round %d: %s receives %s, is owed %s", round, b.ParticipantID, in[b.ParticipantID], wantIn)
		}

		if nonZero == 0 {
			require.Empty(t, transfers, "round %d", round)
		} else {
			require.LessOrEqual(t, len(transfers), nonZero-1, "round %d", round)
		}

		again := Simplify(balances)
		require.Equal(t, transfersAsStrings(transfers), transfersAsStrings(again), "round %d: not deterministic", round)
	}
}
