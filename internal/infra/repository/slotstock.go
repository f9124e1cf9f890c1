package repository

import (
	"context"
	"errors"

	"childcare-booking/internal/infra"
	"childcare-booking/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

type SlotStockRepository struct {
	db db.DBTX
}

func NewSlotStockRepository(dbtx db.DBTX) *SlotStockRepository {
	return &SlotStockRepository{db: dbtx}
}

// Used reads the consumed child-hours for one slot. Absent rows mean an
// untouched slot, not an error.
func (r *SlotStockRepository) Used(ctx context.Context, date string, hour int) (int, error) {
	const q = `SELECT used FROM slot_stock WHERE date = $1 AND hour = $2`

	var used int
	err := r.db.QueryRow(ctx, q, date, hour).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to read slot stock", err)
	}
	return used, nil
}

// TryIncrement performs the capacity check and the increment in a single
// statement. ON CONFLICT locks the slot row, so a concurrent transaction for
// another reservation waits and then re-evaluates the guard against the
// committed value instead of a stale read.
func (r *SlotStockRepository) TryIncrement(ctx context.Context, date string, hour, count, max int) (bool, int, error) {
	const q = `
		INSERT INTO slot_stock (date, hour, used)
		VALUES ($1, $2, $3)
		ON CONFLICT (date, hour)
		DO UPDATE SET used = slot_stock.used + EXCLUDED.used, updated_at = now()
		WHERE slot_stock.used + EXCLUDED.used <= $4
		RETURNING used`

	if count > max {
		return false, 0, nil
	}

	var used int
	err := r.db.QueryRow(ctx, q, date, hour, count, max).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, infra.WrapRepoErr("failed to increment slot stock", err)
	}
	return true, used, nil
}

func (r *SlotStockRepository) UsedByDate(ctx context.Context, date string) (map[int]int, error) {
	const q = `SELECT hour, used FROM slot_stock WHERE date = $1`

	rows, err := r.db.Query(ctx, q, date)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read slot stock by date", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var hour, used int
		if err := rows.Scan(&hour, &used); err != nil {
			return nil, infra.WrapRepoErr("failed to scan slot stock row", err)
		}
		out[hour] = used
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slot stock", err)
	}
	return out, nil
}
