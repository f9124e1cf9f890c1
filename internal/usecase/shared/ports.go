package shared

import (
	"context"
	"time"

	"childcare-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

// Write-side snapshots keep the usecases off the storage row types.

type ReservationSnapshot struct {
	ID              uuid.UUID
	GuardianID      uuid.UUID
	Date            string
	Hour            int
	Status          string
	HourlyRate      int64
	DepositPct      int
	TotalHours      int
	TotalAmount     int64
	DepositAmount   int64
	RemainingAmount int64
	PreferenceID    *string
	ChildrenHours   []int
}

type GuardianSnapshot struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Phone     *string
	DocNumber *string
}

type ChildSnapshot struct {
	ID            uuid.UUID
	FullName      string
	AgeYears      int
	DNI           *string
	HasConditions bool
	Conditions    *string
}

type ChildHoursEntry struct {
	ChildID uuid.UUID
	Hours   int
}

// AppSettings is the process-wide booking configuration, read on every
// pricing/ledger operation with env defaults applied when the row is absent.
type AppSettings struct {
	HourlyRate int64
	DepositPct int
	MaxPerHour int
}

type NewPayment struct {
	Provider      string
	ProviderID    string
	ReservationID uuid.UUID
	Amount        int64
	Kind          string
	Status        string
	Verified      bool
	Raw           []byte
}

// Read-side views for the reservation detail endpoint.

type ReservationView struct {
	ID           uuid.UUID
	Status       string
	Date         string
	Hour         int
	HourHHMM     string
	Guardian     GuardianView
	Totals       reservation.Totals
	HourlyRate   int64
	DepositPct   int
	PreferenceID *string
	Children     []ChildView
	Payments     []PaymentView
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GuardianView struct {
	Name      string
	Email     string
	Phone     *string
	DocNumber *string
}

type ChildView struct {
	ID            uuid.UUID
	FullName      string
	AgeYears      int
	Hours         int
	HasConditions bool
	Conditions    *string
	DNI           *string
}

type PaymentView struct {
	ID         uuid.UUID
	Provider   string
	ProviderID string
	Amount     int64
	Kind       string
	Status     string
	Verified   bool
	CreatedAt  time.Time
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error)
	// Find reads the write-side snapshot without locking.
	Find(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
	// FindForUpdate locks the reservation row for the duration of the
	// transaction, serializing concurrent reconciliations.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, totals reservation.Totals) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status reservation.Status) error
	AttachPreference(ctx context.Context, id uuid.UUID, preferenceID string, status reservation.Status) error
	ReplaceChildren(ctx context.Context, id uuid.UUID, entries []ChildHoursEntry) error
	View(ctx context.Context, id uuid.UUID) (*ReservationView, error)
}

type GuardianRepository interface {
	FindByEmail(ctx context.Context, email string) (*GuardianSnapshot, error)
	Create(ctx context.Context, email, name string) (*GuardianSnapshot, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateContact(ctx context.Context, id uuid.UUID, phone, docNumber *string) error
	FindChildren(ctx context.Context, guardianID uuid.UUID) ([]ChildSnapshot, error)
	CreateChild(ctx context.Context, guardianID uuid.UUID, c ChildSnapshot) (uuid.UUID, error)
	UpdateChild(ctx context.Context, childID uuid.UUID, hasConditions bool, conditions, dni *string) error
}

type SlotStockRepository interface {
	// Used returns the consumed child-hours for a slot, zero when the row
	// does not exist yet.
	Used(ctx context.Context, date string, hour int) (int, error)
	// TryIncrement adds count child-hours to a slot only when the result
	// stays within max. The check and the write are atomic with respect to
	// concurrent transactions; a rejected increment reports accepted=false
	// without error.
	TryIncrement(ctx context.Context, date string, hour, count, max int) (accepted bool, usedAfter int, err error)
	UsedByDate(ctx context.Context, date string) (map[int]int, error)
}

type PaymentRepository interface {
	ExistsByProviderID(ctx context.Context, provider, providerID string) (bool, error)
	Create(ctx context.Context, p NewPayment) error
}

type PaymentEventRepository interface {
	Upsert(ctx context.Context, providerID, status string, raw []byte) error
}

type AppConfigRepository interface {
	// Get returns the singleton settings row with env defaults applied when
	// it is absent.
	Get(ctx context.Context) (AppSettings, error)
	Ensure(ctx context.Context) error
}
