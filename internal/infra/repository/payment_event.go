package repository

import (
	"context"

	"childcare-booking/internal/infra"
	"childcare-booking/internal/infra/db"

	"github.com/google/uuid"
)

type PaymentEventRepository struct {
	db db.DBTX
}

func NewPaymentEventRepository(dbtx db.DBTX) *PaymentEventRepository {
	return &PaymentEventRepository{db: dbtx}
}

// Upsert keeps the latest provider notification per payment for audit and
// support. Events are best-effort and never drive reconciliation decisions.
func (r *PaymentEventRepository) Upsert(ctx context.Context, providerID, status string, raw []byte) error {
	const q = `
		INSERT INTO payment_events (id, provider_id, status, raw)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_id)
		DO UPDATE SET status = EXCLUDED.status, raw = EXCLUDED.raw, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, uuid.New(), providerID, status, raw); err != nil {
		return infra.WrapRepoErr("failed to upsert payment event", err)
	}
	return nil
}
