package repository

import (
	"context"
	"errors"

	"childcare-booking/internal/infra"
	"childcare-booking/internal/infra/db"
	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

// app_config is a singleton row keyed by id=1. Missing row or NULL columns
// fall back to the env-provided booking defaults.
type AppConfigRepository struct {
	db       db.DBTX
	defaults config.BookingConfig
}

func NewAppConfigRepository(dbtx db.DBTX, defaults config.BookingConfig) *AppConfigRepository {
	return &AppConfigRepository{db: dbtx, defaults: defaults}
}

func (r *AppConfigRepository) Get(ctx context.Context) (shared.AppSettings, error) {
	const q = `SELECT hourly_rate, deposit_pct, max_per_hour FROM app_config WHERE id = 1`

	settings := shared.AppSettings{
		HourlyRate: r.defaults.HourlyRate,
		DepositPct: r.defaults.DepositPct,
		MaxPerHour: r.defaults.MaxPerHour,
	}

	var hourlyRate *int64
	var depositPct, maxPerHour *int
	err := r.db.QueryRow(ctx, q).Scan(&hourlyRate, &depositPct, &maxPerHour)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings, nil
		}
		return shared.AppSettings{}, infra.WrapRepoErr("failed to read app config", err)
	}

	if hourlyRate != nil {
		settings.HourlyRate = *hourlyRate
	}
	if depositPct != nil {
		settings.DepositPct = *depositPct
	}
	if maxPerHour != nil {
		settings.MaxPerHour = *maxPerHour
	}
	return settings, nil
}

// Ensure seeds the singleton row with the env defaults when it is absent.
func (r *AppConfigRepository) Ensure(ctx context.Context) error {
	const q = `
		INSERT INTO app_config (id, hourly_rate, deposit_pct, max_per_hour)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, r.defaults.HourlyRate, r.defaults.DepositPct, r.defaults.MaxPerHour)
	if err != nil {
		return infra.WrapRepoErr("failed to seed app config", err)
	}
	return nil
}
