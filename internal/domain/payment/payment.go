// Package payment classifies reconciled provider payments against a
// reservation's expected amounts.
package payment

// Provider tags every payment row written by the MercadoPago integration.
const Provider = "mercadopago"

// StatusApproved is the only provider status that triggers reconciliation.
const StatusApproved = "approved"

// Kind categorizes a reconciled amount relative to the reservation totals.
type Kind string

const (
	KindDeposit   Kind = "deposit"
	KindRemainder Kind = "remainder"
	KindFull      Kind = "full"
	// KindOther is reserved for manually recorded adjustments; Classify
	// never produces it.
	KindOther Kind = "other"
)

func (k Kind) String() string {
	return string(k)
}

// depositTolerance absorbs 1 unit of provider-side rounding drift when
// matching a paid amount against the expected deposit.
const depositTolerance = 1

// Classify maps a paid amount to its kind: full when it covers the total,
// deposit when it lands within tolerance of the expected deposit, remainder
// otherwise.
func Classify(amountPaid, totalAmount, depositAmount int64) Kind {
	if amountPaid >= totalAmount {
		return KindFull
	}
	diff := amountPaid - depositAmount
	if diff < 0 {
		diff = -diff
	}
	if diff <= depositTolerance {
		return KindDeposit
	}
	return KindRemainder
}
