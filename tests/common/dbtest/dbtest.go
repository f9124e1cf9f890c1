//go:build e2e

// Package dbtest resets and seeds the e2e database between tests.
package dbtest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedReferenceData inserts the singleton settings row the booking flows read.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
		INSERT INTO app_config (id, hourly_rate, deposit_pct, max_per_hour)
		VALUES (1, 14000, 50, 10)
		ON CONFLICT (id) DO NOTHING
	`)
	return err
}

// ResetDB truncates all mutable state while keeping the settings row.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
		TRUNCATE TABLE
			payment_events,
			payments,
			reservation_children,
			slot_stock,
			reservations,
			children,
			guardians
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		return err
	}
	return SeedReferenceData(pool)
}
