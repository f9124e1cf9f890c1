package repository

import (
	"context"

	"childcare-booking/internal/infra"
	"childcare-booking/internal/infra/db"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(dbtx db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: dbtx}
}

// ExistsByProviderID is the idempotency probe: a provider payment that is
// already recorded must not be reconciled again.
func (r *PaymentRepository) ExistsByProviderID(ctx context.Context, provider, providerID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM payments WHERE provider = $1 AND provider_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, provider, providerID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check payment existence", err)
	}
	return exists, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p shared.NewPayment) error {
	const q = `
		INSERT INTO payments (id, provider, provider_id, reservation_id, amount, kind, status, verified, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, q,
		uuid.New(), p.Provider, p.ProviderID, p.ReservationID,
		p.Amount, p.Kind, p.Status, p.Verified, p.Raw)
	if err != nil {
		return infra.WrapRepoErr("failed to create payment", err)
	}
	return nil
}
