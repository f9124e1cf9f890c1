package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoDeposit           = errors.New("deposit amount must be positive to request payment")
	ErrAlreadyCompleted    = errors.New("reservation is already completed")
	ErrInvalidStatusString = errors.New("invalid reservation status")
)

// ChildHours links one child to the number of consecutive hourly blocks they
// attend, starting at the reservation's slot hour.
type ChildHours struct {
	ChildID uuid.UUID
	Hours   int
}

// Reservation is the aggregate root. The payment provider identifies it by ID
// (external_reference), so the ID is minted here, not by storage.
type Reservation struct {
	id           uuid.UUID
	guardianID   uuid.UUID
	slot         Slot
	status       Status
	hourlyRate   int64
	depositPct   int
	totals       Totals
	children     []ChildHours
	preferenceID *string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewDraft creates a reservation in draft with zero totals. Rate and pct are
// snapshotted so later configuration changes cannot drift a priced draft.
func NewDraft(guardianID uuid.UUID, slot Slot, hourlyRate int64, depositPct int) *Reservation {
	return &Reservation{
		id:         uuid.New(),
		guardianID: guardianID,
		slot:       slot,
		status:     StatusDraft,
		hourlyRate: hourlyRate,
		depositPct: depositPct,
	}
}

func Reconstruct(
	id, guardianID uuid.UUID,
	slot Slot,
	status Status,
	hourlyRate int64,
	depositPct int,
	totals Totals,
	children []ChildHours,
	preferenceID *string,
	createdAt, updatedAt time.Time,
) (*Reservation, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatusString
	}
	return &Reservation{
		id:           id,
		guardianID:   guardianID,
		slot:         slot,
		status:       status,
		hourlyRate:   hourlyRate,
		depositPct:   depositPct,
		totals:       totals,
		children:     children,
		preferenceID: preferenceID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ReplaceChildren swaps the child set and recomputes totals from the snapshot
// rate/pct. Allowed while the reservation has not been completed; the status
// itself never changes here.
func (r *Reservation) ReplaceChildren(children []ChildHours) error {
	if r.status.IsTerminal() {
		return ErrAlreadyCompleted
	}
	r.children = children
	hours := make([]int, len(children))
	for i, c := range children {
		hours[i] = c.Hours
	}
	r.totals = ComputeTotals(hours, r.hourlyRate, r.depositPct)
	return nil
}

// RequestPayment advances draft -> pending_payment. The transition is always
// caller-driven and requires a positive deposit.
func (r *Reservation) RequestPayment() error {
	switch r.status {
	case StatusPendingPayment:
		return nil // already there; the advance is idempotent
	case StatusCompleted:
		return ErrAlreadyCompleted
	}
	if r.totals.DepositAmount <= 0 {
		return ErrNoDeposit
	}
	r.status = StatusPendingPayment
	return nil
}

func (r *Reservation) AttachPreference(preferenceID string) {
	if preferenceID == "" {
		return
	}
	r.preferenceID = &preferenceID
}

func (r *Reservation) ChildrenHours() []int {
	hours := make([]int, len(r.children))
	for i, c := range r.children {
		hours[i] = c.Hours
	}
	return hours
}

func (r *Reservation) ID() uuid.UUID          { return r.id }
func (r *Reservation) GuardianID() uuid.UUID  { return r.guardianID }
func (r *Reservation) Slot() Slot             { return r.slot }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) HourlyRate() int64      { return r.hourlyRate }
func (r *Reservation) DepositPct() int        { return r.depositPct }
func (r *Reservation) Totals() Totals         { return r.totals }
func (r *Reservation) Children() []ChildHours { return r.children }
func (r *Reservation) PreferenceID() *string  { return r.preferenceID }
func (r *Reservation) CreatedAt() time.Time   { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time   { return r.updatedAt }
