package usecase

import (
	"context"
	"fmt"
	"strings"

	"childcare-booking/internal/domain/reservation"
	"childcare-booking/internal/infra"
	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// CheckoutResult is what the frontend needs to redirect into the provider's
// checkout flow.
type CheckoutResult struct {
	PreferenceID     string
	InitPoint        string
	SandboxInitPoint string
	ReservationID    uuid.UUID
	DepositAmount    int64
}

type CheckoutUseCase interface {
	CreatePreference(ctx context.Context, reservationID uuid.UUID) (*CheckoutResult, error)
}

type checkoutUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  PaymentGateway
	provider config.ProviderConfig
}

func NewCheckoutUseCase(uow shared.UnitOfWork, gateway PaymentGateway, provider config.ProviderConfig) CheckoutUseCase {
	return &checkoutUseCaseImpl{uow: uow, gateway: gateway, provider: provider}
}

// CreatePreference prices the deposit into a provider checkout preference and
// moves the reservation to pending_payment with the preference attached. The
// reservation ID rides as external_reference; the slot rides in the metadata
// so reconciliation can rebuild the ledger from the payment alone.
func (c *checkoutUseCaseImpl) CreatePreference(ctx context.Context, reservationID uuid.UUID) (*CheckoutResult, error) {
	var snap *shared.ReservationSnapshot
	var guardian shared.GuardianView

	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		snap, err = tx.Reservations().Find(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		view, err := tx.Reservations().View(ctx, reservationID)
		if err != nil {
			return err
		}
		guardian = view.Guardian
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snap.Status == reservation.StatusCompleted.String() {
		return nil, ErrReservationCompleted
	}

	totals := reservation.Totals{
		TotalHours:      snap.TotalHours,
		TotalAmount:     snap.TotalAmount,
		DepositAmount:   snap.DepositAmount,
		RemainingAmount: snap.RemainingAmount,
	}
	if err := totals.ValidateForCheckout(); err != nil {
		return nil, err
	}

	slot, err := reservation.NewSlot(snap.Date, snap.Hour)
	if err != nil {
		return nil, err
	}

	pref, err := c.gateway.CreatePreference(ctx, c.buildPreference(snap, slot, guardian))
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().AttachPreference(ctx, reservationID, pref.ID, reservation.StatusPendingPayment)
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
		ReservationID:    reservationID,
		DepositAmount:    snap.DepositAmount,
	}, nil
}

func (c *checkoutUseCaseImpl) buildPreference(snap *shared.ReservationSnapshot, slot reservation.Slot, guardian shared.GuardianView) PreferenceRequest {
	successURL := c.provider.AppBaseURL + "/reservas/confirmacion"
	req := PreferenceRequest{
		ExternalReference: snap.ID.String(),
		Items: []PreferenceItem{{
			Title:     fmt.Sprintf("Seña reserva %s %s", slot.Date(), slot.HourHHMM()),
			Quantity:  1,
			UnitPrice: snap.DepositAmount,
		}},
		PayerEmail: guardian.Email,
		PayerName:  guardian.Name,
		Metadata: map[string]any{
			"reservation_id": snap.ID.String(),
			"fecha":          slot.Date(),
			"hora":           slot.HourHHMM(),
			"children_hours": snap.ChildrenHours,
			"total":          snap.TotalAmount,
			"total_horas":    snap.TotalHours,
			"hourly_rate":    snap.HourlyRate,
			"sena":           snap.DepositAmount,
			"restante":       snap.RemainingAmount,
		},
		BackURLs: PreferenceBackURLs{
			Success: successURL,
			Failure: c.provider.AppBaseURL + "/reservas/error",
			Pending: c.provider.AppBaseURL + "/reservas/pendiente",
		},
		NotificationURL:     c.provider.WebhookURL,
		StatementDescriptor: c.provider.StatementDescriptor,
		BinaryMode:          true,
	}
	// The provider rejects auto_return when the success URL is not https.
	if strings.HasPrefix(successURL, "https://") {
		req.AutoReturn = "approved"
	}
	return req
}
