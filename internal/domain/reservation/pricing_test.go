//go:build unit

package reservation_test

import (
	"testing"

	"childcare-booking/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name          string
		childrenHours []int
		hourlyRate    int64
		depositPct    int
		want          reservation.Totals
	}{
		{
			name:          "two children two hours each",
			childrenHours: []int{2, 2},
			hourlyRate:    14000,
			depositPct:    50,
			want: reservation.Totals{
				TotalHours:      4,
				TotalAmount:     56000,
				DepositAmount:   28000,
				RemainingAmount: 28000,
			},
		},
		{
			name:          "single child single hour",
			childrenHours: []int{1},
			hourlyRate:    14000,
			depositPct:    50,
			want: reservation.Totals{
				TotalHours:      1,
				TotalAmount:     14000,
				DepositAmount:   7000,
				RemainingAmount: 7000,
			},
		},
		{
			name:          "deposit rounds half away from zero",
			childrenHours: []int{5},
			hourlyRate:    5,
			depositPct:    50,
			want: reservation.Totals{
				TotalHours:      5,
				TotalAmount:     25,
				DepositAmount:   13,
				RemainingAmount: 12,
			},
		},
		{
			name:          "full deposit leaves no remainder",
			childrenHours: []int{3},
			hourlyRate:    14000,
			depositPct:    100,
			want: reservation.Totals{
				TotalHours:      3,
				TotalAmount:     42000,
				DepositAmount:   42000,
				RemainingAmount: 0,
			},
		},
		{
			name:          "no children yields zero totals",
			childrenHours: nil,
			hourlyRate:    14000,
			depositPct:    50,
			want:          reservation.Totals{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := reservation.ComputeTotals(c.childrenHours, c.hourlyRate, c.depositPct)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestTotalsValidateForCheckout(t *testing.T) {
	t.Run("priced totals pass", func(t *testing.T) {
		totals := reservation.ComputeTotals([]int{2}, 14000, 50)
		require.NoError(t, totals.ValidateForCheckout())
	})

	t.Run("zero totals are rejected", func(t *testing.T) {
		err := reservation.Totals{}.ValidateForCheckout()
		require.ErrorIs(t, err, reservation.ErrNoHoursOrAmount)
	})

	t.Run("hours without amount are rejected", func(t *testing.T) {
		err := reservation.Totals{TotalHours: 2}.ValidateForCheckout()
		require.ErrorIs(t, err, reservation.ErrNoHoursOrAmount)
	})
}
