package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"childcare-booking/internal/domain/reservation"
	reqdto "childcare-booking/internal/handler/dto/request"
	"childcare-booking/internal/infra"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrInvalidSlot          = errors.New("invalid reservation slot")
	ErrOutsideOperatingHour = errors.New("hour is outside operating hours")
	ErrReservationCompleted = errors.New("reservation is already completed")
)

type ReservationUseCase interface {
	CreateDraft(ctx context.Context, req reqdto.CreateReservationRequest) (*shared.ReservationView, error)
	UpdateChildren(ctx context.Context, id uuid.UUID, req reqdto.UpdateChildrenRequest) (*shared.ReservationView, error)
	AdvanceToPendingPayment(ctx context.Context, id uuid.UUID) (*shared.ReservationView, error)
	Get(ctx context.Context, id uuid.UUID) (*shared.ReservationView, error)
}

type reservationUseCaseImpl struct {
	uow      shared.UnitOfWork
	openHour int
	closeHr  int
}

func NewReservationUseCase(uow shared.UnitOfWork, openHour, closeHour int) ReservationUseCase {
	return &reservationUseCaseImpl{uow: uow, openHour: openHour, closeHr: closeHour}
}

// CreateDraft registers a priced draft: guardian upserted by email, children
// matched or created under the guardian, totals computed from the settings
// snapshot. No capacity is consumed at this point.
func (r *reservationUseCaseImpl) CreateDraft(ctx context.Context, req reqdto.CreateReservationRequest) (*shared.ReservationView, error) {
	slot, err := reservation.NewSlot(req.Date, req.Hour)
	if err != nil {
		return nil, ErrInvalidSlot
	}
	if req.Hour < r.openHour || req.Hour >= r.closeHr {
		return nil, ErrOutsideOperatingHour
	}

	var view *shared.ReservationView
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		settings, err := tx.AppConfig().Get(ctx)
		if err != nil {
			return err
		}

		guardian, err := r.upsertGuardian(ctx, tx, req.Guardian)
		if err != nil {
			return err
		}

		children, err := r.resolveChildren(ctx, tx, guardian.ID, req.Children)
		if err != nil {
			return err
		}

		draft := reservation.NewDraft(guardian.ID, slot, settings.HourlyRate, settings.DepositPct)
		if err := draft.ReplaceChildren(children); err != nil {
			return err
		}

		id, err := tx.Reservations().Create(ctx, draft)
		if err != nil {
			return err
		}

		view, err = tx.Reservations().View(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateChildren replaces the child set of a non-completed reservation and
// reprices it with the rate snapshotted on the reservation row.
func (r *reservationUseCaseImpl) UpdateChildren(ctx context.Context, id uuid.UUID, req reqdto.UpdateChildrenRequest) (*shared.ReservationView, error) {
	var view *shared.ReservationView
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reservations().FindForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		agg, err := snapshotToAggregate(snap)
		if err != nil {
			return err
		}

		children, err := r.resolveChildren(ctx, tx, snap.GuardianID, req.Children)
		if err != nil {
			return err
		}
		if err := agg.ReplaceChildren(children); err != nil {
			if errors.Is(err, reservation.ErrAlreadyCompleted) {
				return ErrReservationCompleted
			}
			return err
		}

		entries := make([]shared.ChildHoursEntry, len(children))
		for i, c := range children {
			entries[i] = shared.ChildHoursEntry{ChildID: c.ChildID, Hours: c.Hours}
		}
		if err := tx.Reservations().ReplaceChildren(ctx, id, entries); err != nil {
			return err
		}
		if err := tx.Reservations().UpdateTotals(ctx, id, agg.Totals()); err != nil {
			return err
		}

		view, err = tx.Reservations().View(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AdvanceToPendingPayment is the explicit draft -> pending_payment step. It
// is idempotent when the reservation already awaits payment.
func (r *reservationUseCaseImpl) AdvanceToPendingPayment(ctx context.Context, id uuid.UUID) (*shared.ReservationView, error) {
	var view *shared.ReservationView
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reservations().FindForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		agg, err := snapshotToAggregate(snap)
		if err != nil {
			return err
		}
		if err := agg.RequestPayment(); err != nil {
			switch {
			case errors.Is(err, reservation.ErrAlreadyCompleted):
				return ErrReservationCompleted
			case errors.Is(err, reservation.ErrNoDeposit):
				return reservation.ErrNoHoursOrAmount
			}
			return err
		}

		if err := tx.Reservations().UpdateStatus(ctx, id, agg.Status()); err != nil {
			return err
		}

		view, err = tx.Reservations().View(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *reservationUseCaseImpl) Get(ctx context.Context, id uuid.UUID) (*shared.ReservationView, error) {
	var view *shared.ReservationView
	err := r.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		view, err = tx.Reservations().View(ctx, id)
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrReservationNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// upsertGuardian finds or creates the guardian by email. A missing email
// yields a unique guest identity so the reservation still has an owner row.
func (r *reservationUseCaseImpl) upsertGuardian(ctx context.Context, tx shared.Tx, payload reqdto.GuardianPayload) (*shared.GuardianSnapshot, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		email = "guest+" + uuid.NewString() + "@reservas.local"
	}

	guardian, err := tx.Guardians().FindByEmail(ctx, email)
	switch {
	case err == nil:
		if payload.Name != "" && payload.Name != guardian.Name {
			if err := tx.Guardians().UpdateName(ctx, guardian.ID, payload.Name); err != nil {
				return nil, err
			}
			guardian.Name = payload.Name
		}
	case infra.IsKind(err, infra.KindNotFound):
		guardian, err = tx.Guardians().Create(ctx, email, payload.Name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if payload.Phone != nil || payload.DocNumber != nil {
		if err := tx.Guardians().UpdateContact(ctx, guardian.ID, payload.Phone, payload.DocNumber); err != nil {
			return nil, err
		}
	}
	return guardian, nil
}

// resolveChildren matches each payload child to an existing child of the
// guardian (by DNI first, then by name and age) or creates it.
func (r *reservationUseCaseImpl) resolveChildren(ctx context.Context, tx shared.Tx, guardianID uuid.UUID, payloads []reqdto.ChildPayload) ([]reservation.ChildHours, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	existing, err := tx.Guardians().FindChildren(ctx, guardianID)
	if err != nil {
		return nil, err
	}

	out := make([]reservation.ChildHours, 0, len(payloads))
	for _, p := range payloads {
		match := matchChild(existing, p)
		if match != nil {
			if err := tx.Guardians().UpdateChild(ctx, match.ID, p.HasConditions, p.Conditions, p.DNI); err != nil {
				return nil, err
			}
			out = append(out, reservation.ChildHours{ChildID: match.ID, Hours: p.Hours})
			continue
		}

		id, err := tx.Guardians().CreateChild(ctx, guardianID, shared.ChildSnapshot{
			FullName:      p.FullName,
			AgeYears:      p.AgeYears,
			DNI:           p.DNI,
			HasConditions: p.HasConditions,
			Conditions:    p.Conditions,
		})
		if err != nil {
			return nil, err
		}
		existing = append(existing, shared.ChildSnapshot{ID: id, FullName: p.FullName, AgeYears: p.AgeYears, DNI: p.DNI})
		out = append(out, reservation.ChildHours{ChildID: id, Hours: p.Hours})
	}
	return out, nil
}

func matchChild(existing []shared.ChildSnapshot, p reqdto.ChildPayload) *shared.ChildSnapshot {
	if p.DNI != nil && *p.DNI != "" {
		for i := range existing {
			if existing[i].DNI != nil && *existing[i].DNI == *p.DNI {
				return &existing[i]
			}
		}
	}
	for i := range existing {
		if strings.EqualFold(existing[i].FullName, p.FullName) && existing[i].AgeYears == p.AgeYears {
			return &existing[i]
		}
	}
	return nil
}

func snapshotToAggregate(snap *shared.ReservationSnapshot) (*reservation.Reservation, error) {
	slot, err := reservation.NewSlot(snap.Date, snap.Hour)
	if err != nil {
		return nil, err
	}
	status := reservation.Status(snap.Status)

	children := make([]reservation.ChildHours, len(snap.ChildrenHours))
	for i, h := range snap.ChildrenHours {
		children[i] = reservation.ChildHours{Hours: h}
	}

	return reservation.Reconstruct(
		snap.ID, snap.GuardianID, slot, status,
		snap.HourlyRate, snap.DepositPct,
		reservation.Totals{
			TotalHours:      snap.TotalHours,
			TotalAmount:     snap.TotalAmount,
			DepositAmount:   snap.DepositAmount,
			RemainingAmount: snap.RemainingAmount,
		},
		children, snap.PreferenceID,
		// timestamps are read-model concerns; commands never touch them
		time.Time{}, time.Time{},
	)
}
