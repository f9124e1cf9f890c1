// Package fake provides in-memory implementations of the storage ports for
// usecase tests. All stores share one UoW value; transactions are simulated
// by running the callback directly against the shared state.
package fake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"childcare-booking/internal/domain/reservation"
	"childcare-booking/internal/infra"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type UoW struct {
	ReservationStore  *ReservationStore
	GuardianStore     *GuardianStore
	SlotStockStore    *SlotStockStore
	PaymentStore      *PaymentStore
	PaymentEventStore *PaymentEventStore
	Settings          shared.AppSettings
}

func NewUoW() *UoW {
	return &UoW{
		ReservationStore:  &ReservationStore{rows: map[uuid.UUID]*shared.ReservationSnapshot{}},
		GuardianStore:     &GuardianStore{guardians: map[uuid.UUID]*shared.GuardianSnapshot{}, children: map[uuid.UUID][]shared.ChildSnapshot{}},
		SlotStockStore:    &SlotStockStore{used: map[string]int{}},
		PaymentStore:      &PaymentStore{rows: map[string]shared.NewPayment{}},
		PaymentEventStore: &PaymentEventStore{rows: map[string]string{}},
		Settings:          shared.AppSettings{HourlyRate: 14000, DepositPct: 50, MaxPerHour: 10},
	}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u)
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u)
}

func (u *UoW) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u)
}

func (u *UoW) Reservations() shared.ReservationRepository   { return u.ReservationStore }
func (u *UoW) Guardians() shared.GuardianRepository         { return u.GuardianStore }
func (u *UoW) SlotStock() shared.SlotStockRepository        { return u.SlotStockStore }
func (u *UoW) Payments() shared.PaymentRepository           { return u.PaymentStore }
func (u *UoW) PaymentEvents() shared.PaymentEventRepository { return u.PaymentEventStore }
func (u *UoW) AppConfig() shared.AppConfigRepository        { return &appConfigStore{settings: &u.Settings} }

type ReservationStore struct {
	rows map[uuid.UUID]*shared.ReservationSnapshot
}

// Seed installs a snapshot directly, bypassing the aggregate.
func (s *ReservationStore) Seed(snap shared.ReservationSnapshot) {
	s.rows[snap.ID] = &snap
}

func (s *ReservationStore) Get(id uuid.UUID) shared.ReservationSnapshot {
	return *s.rows[id]
}

func (s *ReservationStore) Create(_ context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	t := res.Totals()
	snap := &shared.ReservationSnapshot{
		ID:              res.ID(),
		GuardianID:      res.GuardianID(),
		Date:            res.Slot().Date(),
		Hour:            res.Slot().Hour(),
		Status:          res.Status().String(),
		HourlyRate:      res.HourlyRate(),
		DepositPct:      res.DepositPct(),
		TotalHours:      t.TotalHours,
		TotalAmount:     t.TotalAmount,
		DepositAmount:   t.DepositAmount,
		RemainingAmount: t.RemainingAmount,
		ChildrenHours:   res.ChildrenHours(),
	}
	s.rows[snap.ID] = snap
	return snap.ID, nil
}

func (s *ReservationStore) Find(_ context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	snap, ok := s.rows[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	copied := *snap
	return &copied, nil
}

func (s *ReservationStore) FindForUpdate(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	return s.Find(ctx, id)
}

func (s *ReservationStore) UpdateTotals(_ context.Context, id uuid.UUID, totals reservation.Totals) error {
	snap, ok := s.rows[id]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	snap.TotalHours = totals.TotalHours
	snap.TotalAmount = totals.TotalAmount
	snap.DepositAmount = totals.DepositAmount
	snap.RemainingAmount = totals.RemainingAmount
	return nil
}

func (s *ReservationStore) UpdateStatus(_ context.Context, id uuid.UUID, status reservation.Status) error {
	snap, ok := s.rows[id]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	snap.Status = status.String()
	return nil
}

func (s *ReservationStore) AttachPreference(_ context.Context, id uuid.UUID, preferenceID string, status reservation.Status) error {
	snap, ok := s.rows[id]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	snap.PreferenceID = &preferenceID
	snap.Status = status.String()
	return nil
}

func (s *ReservationStore) ReplaceChildren(_ context.Context, id uuid.UUID, entries []shared.ChildHoursEntry) error {
	snap, ok := s.rows[id]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	hours := make([]int, len(entries))
	for i, e := range entries {
		hours[i] = e.Hours
	}
	snap.ChildrenHours = hours
	return nil
}

func (s *ReservationStore) View(_ context.Context, id uuid.UUID) (*shared.ReservationView, error) {
	snap, ok := s.rows[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	slot, _ := reservation.NewSlot(snap.Date, snap.Hour)
	return &shared.ReservationView{
		ID:       snap.ID,
		Status:   snap.Status,
		Date:     snap.Date,
		Hour:     snap.Hour,
		HourHHMM: slot.HourHHMM(),
		Totals: reservation.Totals{
			TotalHours:      snap.TotalHours,
			TotalAmount:     snap.TotalAmount,
			DepositAmount:   snap.DepositAmount,
			RemainingAmount: snap.RemainingAmount,
		},
		HourlyRate:   snap.HourlyRate,
		DepositPct:   snap.DepositPct,
		PreferenceID: snap.PreferenceID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

type GuardianStore struct {
	guardians map[uuid.UUID]*shared.GuardianSnapshot
	children  map[uuid.UUID][]shared.ChildSnapshot
}

func (s *GuardianStore) Get(id uuid.UUID) shared.GuardianSnapshot {
	return *s.guardians[id]
}

func (s *GuardianStore) FindByEmail(_ context.Context, email string) (*shared.GuardianSnapshot, error) {
	for _, g := range s.guardians {
		if strings.EqualFold(g.Email, email) {
			copied := *g
			return &copied, nil
		}
	}
	return nil, infra.WrapRepoErr("guardian not found", nil, infra.KindNotFound)
}

func (s *GuardianStore) Create(_ context.Context, email, name string) (*shared.GuardianSnapshot, error) {
	g := &shared.GuardianSnapshot{ID: uuid.New(), Email: email, Name: name}
	s.guardians[g.ID] = g
	copied := *g
	return &copied, nil
}

func (s *GuardianStore) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	if g, ok := s.guardians[id]; ok {
		g.Name = name
	}
	return nil
}

func (s *GuardianStore) UpdateContact(_ context.Context, id uuid.UUID, phone, docNumber *string) error {
	g, ok := s.guardians[id]
	if !ok {
		return infra.WrapRepoErr("guardian not found", nil, infra.KindNotFound)
	}
	if phone != nil {
		g.Phone = phone
	}
	if docNumber != nil {
		g.DocNumber = docNumber
	}
	return nil
}

func (s *GuardianStore) FindChildren(_ context.Context, guardianID uuid.UUID) ([]shared.ChildSnapshot, error) {
	return append([]shared.ChildSnapshot(nil), s.children[guardianID]...), nil
}

func (s *GuardianStore) CreateChild(_ context.Context, guardianID uuid.UUID, c shared.ChildSnapshot) (uuid.UUID, error) {
	c.ID = uuid.New()
	s.children[guardianID] = append(s.children[guardianID], c)
	return c.ID, nil
}

func (s *GuardianStore) UpdateChild(_ context.Context, childID uuid.UUID, hasConditions bool, conditions, dni *string) error {
	for gid := range s.children {
		for i := range s.children[gid] {
			if s.children[gid][i].ID == childID {
				s.children[gid][i].HasConditions = hasConditions
				s.children[gid][i].Conditions = conditions
				if dni != nil {
					s.children[gid][i].DNI = dni
				}
				return nil
			}
		}
	}
	return infra.WrapRepoErr("child not found", nil, infra.KindNotFound)
}

type SlotStockStore struct {
	used map[string]int
}

func slotKey(date string, hour int) string {
	return fmt.Sprintf("%s/%02d", date, hour)
}

func (s *SlotStockStore) SeedUsed(date string, hour, used int) {
	s.used[slotKey(date, hour)] = used
}

func (s *SlotStockStore) Used(_ context.Context, date string, hour int) (int, error) {
	return s.used[slotKey(date, hour)], nil
}

func (s *SlotStockStore) TryIncrement(_ context.Context, date string, hour, count, max int) (bool, int, error) {
	key := slotKey(date, hour)
	if s.used[key]+count > max {
		return false, 0, nil
	}
	s.used[key] += count
	return true, s.used[key], nil
}

func (s *SlotStockStore) UsedByDate(_ context.Context, date string) (map[int]int, error) {
	out := map[int]int{}
	for key, used := range s.used {
		var d string
		var h int
		if _, err := fmt.Sscanf(key, "%10s/%02d", &d, &h); err == nil && d == date {
			out[h] = used
		}
	}
	return out, nil
}

type PaymentStore struct {
	rows map[string]shared.NewPayment
}

func paymentKey(provider, providerID string) string {
	return provider + "/" + providerID
}

func (s *PaymentStore) ExistsByProviderID(_ context.Context, provider, providerID string) (bool, error) {
	_, ok := s.rows[paymentKey(provider, providerID)]
	return ok, nil
}

func (s *PaymentStore) Create(_ context.Context, p shared.NewPayment) error {
	key := paymentKey(p.Provider, p.ProviderID)
	if _, ok := s.rows[key]; ok {
		return infra.WrapRepoErr("duplicate payment", nil, infra.KindDuplicateKey)
	}
	s.rows[key] = p
	return nil
}

func (s *PaymentStore) All() []shared.NewPayment {
	out := make([]shared.NewPayment, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p)
	}
	return out
}

type PaymentEventStore struct {
	rows map[string]string
}

func (s *PaymentEventStore) Upsert(_ context.Context, providerID, status string, _ []byte) error {
	s.rows[providerID] = status
	return nil
}

func (s *PaymentEventStore) Status(providerID string) string {
	return s.rows[providerID]
}

type appConfigStore struct {
	settings *shared.AppSettings
}

func (s *appConfigStore) Get(_ context.Context) (shared.AppSettings, error) {
	return *s.settings, nil
}

func (s *appConfigStore) Ensure(_ context.Context) error {
	return nil
}
