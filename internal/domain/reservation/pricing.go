package reservation

import (
	"errors"
	"math"
)

// ErrNoHoursOrAmount rejects checkout for reservations whose totals are zero
// (reason code RESERVA_SIN_HORAS_O_SIN_MONTO on the API surface).
var ErrNoHoursOrAmount = errors.New("reservation has no hours or no amount")

// Totals is the monetary snapshot of a reservation. Amounts are whole
// currency units; the deposit is rounded half away from zero.
type Totals struct {
	TotalHours      int
	TotalAmount     int64
	DepositAmount   int64
	RemainingAmount int64
}

// ComputeTotals derives totals from per-child hour allocations and the
// reservation's snapshot rate/pct. Totals are always recomputed from scratch,
// never incrementally maintained.
func ComputeTotals(childrenHours []int, hourlyRate int64, depositPct int) Totals {
	totalHours := 0
	for _, h := range childrenHours {
		if h > 0 {
			totalHours += h
		}
	}

	totalAmount := int64(totalHours) * hourlyRate
	depositAmount := int64(math.Round(float64(totalAmount) * float64(depositPct) / 100.0))
	remainingAmount := totalAmount - depositAmount
	if remainingAmount < 0 {
		remainingAmount = 0
	}

	return Totals{
		TotalHours:      totalHours,
		TotalAmount:     totalAmount,
		DepositAmount:   depositAmount,
		RemainingAmount: remainingAmount,
	}
}

// ValidateForCheckout gates the transition toward payment: a reservation with
// no hours or a zero deposit must not reach the provider.
func (t Totals) ValidateForCheckout() error {
	if t.TotalHours <= 0 || t.TotalAmount <= 0 || t.DepositAmount <= 0 {
		return ErrNoHoursOrAmount
	}
	return nil
}
