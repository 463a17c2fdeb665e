package calculator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		participants []string
		want         []string
		wantErr      bool
	}{
		{
			name:         "divides exactly",
			amount:       "300",
			participants: []string{"A", "B", "C"},
			want:         []string{"100.00", "100.00", "100.00"},
		},
		{
			name:         "leftover cents go to the first participants",
			amount:       "100",
			participants: []string{"A", "B", "C"},
			want:         []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "two leftover cents",
			amount:       "0.05",
			participants: []string{"A", "B", "C"},
			want:         []string{"0.02", "0.02", "0.01"},
		},
		{
			name:         "sub-cent amount is rounded first",
			amount:       "10.005",
			participants: []string{"A", "B"},
			want:         []string{"5.01", "5.00"},
		},
		{
			name:         "no participants",
			amount:       "10",
			participants: []string{},
			wantErr:      true,
		},
		{
			name:         "negative amount",
			amount:       "-1",
			participants: []string{"A"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitEvenly(d(tt.amount), tt.participants)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, shares, len(tt.want))

			total := decimal.Zero
			for i, s := range shares {
				assert.Equal(t, tt.participants[i], s.ParticipantID)
				assert.Equal(t, tt.want[i], s.Amount.StringFixed(2))
				total = total.Add(s.Amount)
			}
			assert.True(t, total.Equal(d(tt.amount).Round(2)), "shares sum to %s", total)
		})
	}
}

func TestSplitByWeights(t *testing.T) {
	shares, err := SplitByWeights(d("100"), []string{"A", "B", "C"}, []int64{2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "66.67", shares[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", shares[1].Amount.StringFixed(2))
	assert.Equal(t, "0.00", shares[2].Amount.StringFixed(2))

	_, err = SplitByWeights(d("10"), []string{"A"}, []int64{1, 2})
	assert.Error(t, err)

	_, err = SplitByWeights(d("10"), []string{"A", "B"}, []int64{0, 0})
	assert.Error(t, err)

	_, err = SplitByWeights(d("10"), []string{"A", "B"}, []int64{1, -1})
	assert.Error(t, err)
}

func TestSplitByWeights_RejectsHugeWeights(t *testing.T) {
	_, err := SplitByWeights(d("0.01"), []string{"A", "B", "C"}, []int64{1 << 62, 1 << 62, math.MaxInt64})
	assert.Error(t, err)

	_, err = SplitByWeights(d("10"), []string{"A", "B"}, []int64{MaxWeight + 1, 1})
	assert.Error(t, err)
}

func TestSplitByWeights_LargeWeightsStayExact(t *testing.T) {
	amount := d("999999.99")
	participants := []string{"A", "B", "C"}
	shares, err := SplitByWeights(amount, participants, []int64{MaxWeight, MaxWeight - 1, 7})
	require.NoError(t, err)

	total := decimal.Zero
	for _, s := range shares {
		assert.False(t, s.Amount.IsNegative(), "share of %s is negative: %s", s.ParticipantID, s.Amount)
		total = total.Add(s.Amount)
	}
	assert.True(t, total.Equal(amount), "shares sum to %s", total)
}
