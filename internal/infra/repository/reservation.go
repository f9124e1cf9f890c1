package repository

import (
	"context"
	"errors"

	"childcare-booking/internal/domain/reservation"
	"childcare-booking/internal/infra"
	"childcare-booking/internal/infra/db"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	const q = `
		INSERT INTO reservations (
			id, guardian_id, date, hour, status,
			hourly_rate, deposit_pct,
			total_hours, total_amount, deposit_amount, remaining_amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	t := res.Totals()
	var id uuid.UUID
	err := r.db.QueryRow(ctx, q,
		res.ID(), res.GuardianID(), res.Slot().Date(), res.Slot().Hour(), res.Status().String(),
		res.HourlyRate(), res.DepositPct(),
		t.TotalHours, t.TotalAmount, t.DepositAmount, t.RemainingAmount,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err)
	}

	for _, c := range res.Children() {
		if err := r.insertChild(ctx, id, c.ChildID, c.Hours); err != nil {
			return uuid.Nil, err
		}
	}

	return id, nil
}

const reservationColumns = `
	id, guardian_id, to_char(date, 'YYYY-MM-DD'), hour, status,
	hourly_rate, deposit_pct,
	total_hours, total_amount, deposit_amount, remaining_amount,
	preference_id`

func (r *ReservationRepository) Find(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	return r.find(ctx, id, false)
}

// FindForUpdate takes a row lock so concurrent reconciliations of the same
// reservation serialize instead of double-applying the ledger.
func (r *ReservationRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	return r.find(ctx, id, true)
}

func (r *ReservationRepository) find(ctx context.Context, id uuid.UUID, forUpdate bool) (*shared.ReservationSnapshot, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}

	var snap shared.ReservationSnapshot
	err := r.db.QueryRow(ctx, q, id).Scan(
		&snap.ID, &snap.GuardianID, &snap.Date, &snap.Hour, &snap.Status,
		&snap.HourlyRate, &snap.DepositPct,
		&snap.TotalHours, &snap.TotalAmount, &snap.DepositAmount, &snap.RemainingAmount,
		&snap.PreferenceID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}

	hours, err := r.childrenHours(ctx, id)
	if err != nil {
		return nil, err
	}
	snap.ChildrenHours = hours

	return &snap, nil
}

func (r *ReservationRepository) childrenHours(ctx context.Context, id uuid.UUID) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT hours FROM reservation_children WHERE reservation_id = $1 ORDER BY child_id`, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load reservation children", err)
	}
	defer rows.Close()

	var hours []int
	for rows.Next() {
		var h int
		if err := rows.Scan(&h); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation child", err)
		}
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation children", err)
	}
	return hours, nil
}

func (r *ReservationRepository) UpdateTotals(ctx context.Context, id uuid.UUID, totals reservation.Totals) error {
	const q = `
		UPDATE reservations
		SET total_hours = $2, total_amount = $3, deposit_amount = $4,
		    remaining_amount = $5, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id,
		totals.TotalHours, totals.TotalAmount, totals.DepositAmount, totals.RemainingAmount)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation totals", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status reservation.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1`,
		id, status.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) AttachPreference(ctx context.Context, id uuid.UUID, preferenceID string, status reservation.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reservations SET preference_id = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, preferenceID, status.String())
	if err != nil {
		return infra.WrapRepoErr("failed to attach preference", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) ReplaceChildren(ctx context.Context, id uuid.UUID, entries []shared.ChildHoursEntry) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM reservation_children WHERE reservation_id = $1`, id); err != nil {
		return infra.WrapRepoErr("failed to clear reservation children", err)
	}
	for _, e := range entries {
		if err := r.insertChild(ctx, id, e.ChildID, e.Hours); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReservationRepository) insertChild(ctx context.Context, reservationID, childID uuid.UUID, hours int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reservation_children (reservation_id, child_id, hours) VALUES ($1, $2, $3)`,
		reservationID, childID, hours)
	if err != nil {
		return infra.WrapRepoErr("failed to link child to reservation", err)
	}
	return nil
}

// View assembles the full read model for the detail endpoint: reservation,
// guardian, children with hours, and recorded payments.
func (r *ReservationRepository) View(ctx context.Context, id uuid.UUID) (*shared.ReservationView, error) {
	const q = `
		SELECT r.id, r.status, to_char(r.date, 'YYYY-MM-DD'), r.hour,
		       r.hourly_rate, r.deposit_pct,
		       r.total_hours, r.total_amount, r.deposit_amount, r.remaining_amount,
		       r.preference_id, r.created_at, r.updated_at,
		       g.name, g.email, g.phone, g.doc_number
		FROM reservations r
		JOIN guardians g ON g.id = r.guardian_id
		WHERE r.id = $1`

	var v shared.ReservationView
	err := r.db.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.Status, &v.Date, &v.Hour,
		&v.HourlyRate, &v.DepositPct,
		&v.Totals.TotalHours, &v.Totals.TotalAmount, &v.Totals.DepositAmount, &v.Totals.RemainingAmount,
		&v.PreferenceID, &v.CreatedAt, &v.UpdatedAt,
		&v.Guardian.Name, &v.Guardian.Email, &v.Guardian.Phone, &v.Guardian.DocNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load reservation view", err)
	}

	slot, err := reservation.NewSlot(v.Date, v.Hour)
	if err == nil {
		v.HourHHMM = slot.HourHHMM()
	}

	children, err := r.viewChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Children = children

	payments, err := r.viewPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Payments = payments

	return &v, nil
}

func (r *ReservationRepository) viewChildren(ctx context.Context, id uuid.UUID) ([]shared.ChildView, error) {
	const q = `
		SELECT c.id, c.full_name, c.age_years, rc.hours,
		       c.has_conditions, c.conditions, c.dni
		FROM reservation_children rc
		JOIN children c ON c.id = rc.child_id
		WHERE rc.reservation_id = $1
		ORDER BY c.full_name`

	rows, err := r.db.Query(ctx, q, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load reservation children view", err)
	}
	defer rows.Close()

	var out []shared.ChildView
	for rows.Next() {
		var c shared.ChildView
		if err := rows.Scan(&c.ID, &c.FullName, &c.AgeYears, &c.Hours,
			&c.HasConditions, &c.Conditions, &c.DNI); err != nil {
			return nil, infra.WrapRepoErr("failed to scan child view", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate children view", err)
	}
	return out, nil
}

func (r *ReservationRepository) viewPayments(ctx context.Context, id uuid.UUID) ([]shared.PaymentView, error) {
	const q = `
		SELECT id, provider, provider_id, amount, kind, status, verified, created_at
		FROM payments
		WHERE reservation_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load payments view", err)
	}
	defer rows.Close()

	var out []shared.PaymentView
	for rows.Next() {
		var p shared.PaymentView
		if err := rows.Scan(&p.ID, &p.Provider, &p.ProviderID, &p.Amount,
			&p.Kind, &p.Status, &p.Verified, &p.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment view", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payments view", err)
	}
	return out, nil
}
