package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"childcare-booking/internal/domain/payment"
	"childcare-booking/internal/infra"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// Outcome classifies a resolution attempt. Resolved means a confirmed
// payment identity exists; NotReady means the provider has nothing usable
// yet and the caller may retry; Ignored means the notification is final but
// carries nothing to reconcile.
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeNotReady Outcome = "not_ready"
	OutcomeIgnored  Outcome = "ignored"
)

// Resolution is a confirmed (or rejected) payment identity: which
// reservation, under which provider payment ID, for how much. Verified is
// false only on the trusted-return path where no provider API call backs the
// identity. ProviderID and ProviderStatus are filled on every resolution
// that touched a provider document, so the event log sees non-approved
// notifications too.
type Resolution struct {
	Outcome        Outcome
	Reason         string
	ReservationID  uuid.UUID
	ProviderID     string
	ProviderStatus string
	Amount         int64
	Verified       bool
	Metadata       *SlotMetadata
	Raw            []byte
}

// ResolveInput carries whatever identifiers the caller has: a webhook has a
// payment ID, a merchant-order topic has an order ID, a checkout return has
// external_reference plus a status hint.
type ResolveInput struct {
	PaymentID         string
	OrderID           string
	ExternalReference string
	ReturnStatus      string
}

// PaymentResolver turns provider identifiers into a payment identity,
// trying the strongest evidence first: the payment itself, then the
// merchant order, then (opt-in) the bare checkout return.
type PaymentResolver interface {
	Resolve(ctx context.Context, in ResolveInput) (*Resolution, error)
}

type paymentResolverImpl struct {
	gateway          PaymentGateway
	uow              shared.UnitOfWork
	allowReturnTrust bool
}

func NewPaymentResolver(gateway PaymentGateway, uow shared.UnitOfWork, allowReturnTrust bool) PaymentResolver {
	return &paymentResolverImpl{gateway: gateway, uow: uow, allowReturnTrust: allowReturnTrust}
}

func (r *paymentResolverImpl) Resolve(ctx context.Context, in ResolveInput) (*Resolution, error) {
	trustReady := r.allowReturnTrust && in.ExternalReference != "" && in.ReturnStatus == "approved"

	// A non-approved payment is only final when no weaker evidence is left
	// to try; otherwise it is held back while the order (and the trusted
	// return) get their chance to prove the payment went through.
	var deferred *Resolution

	if in.PaymentID != "" {
		res, err := r.resolveByPayment(ctx, in.PaymentID)
		if err != nil {
			return nil, err
		}
		switch {
		case res == nil:
		case res.Outcome == OutcomeResolved:
			return res, nil
		case in.OrderID != "" || trustReady:
			deferred = res
		default:
			return res, nil
		}
	}

	if in.OrderID != "" {
		res, err := r.resolveByOrder(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if res.Outcome == OutcomeResolved {
				return res, nil
			}
			deferred = res
		}
	}

	if trustReady {
		return r.resolveByReturn(ctx, in)
	}

	if deferred != nil {
		return deferred, nil
	}
	return &Resolution{Outcome: OutcomeNotReady, Reason: "no usable provider evidence"}, nil
}

// resolveByPayment fetches the payment directly. A 404 falls through to the
// next path: payment lookups can lag the webhook that announced them.
func (r *paymentResolverImpl) resolveByPayment(ctx context.Context, paymentID string) (*Resolution, error) {
	p, err := r.gateway.Payment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if p.Status != payment.StatusApproved {
		return &Resolution{
			Outcome:        OutcomeIgnored,
			Reason:         fmt.Sprintf("payment %s has status %q", p.ID, p.Status),
			ProviderID:     p.ID,
			ProviderStatus: p.Status,
			Raw:            p.Raw,
		}, nil
	}

	reservationID, err := paymentReservationRef(p)
	if err != nil {
		return &Resolution{
			Outcome:        OutcomeIgnored,
			Reason:         fmt.Sprintf("payment %s carries no reservation reference", p.ID),
			ProviderID:     p.ID,
			ProviderStatus: p.Status,
			Raw:            p.Raw,
		}, nil
	}

	return &Resolution{
		Outcome:        OutcomeResolved,
		ReservationID:  reservationID,
		ProviderID:     p.ID,
		ProviderStatus: p.Status,
		Amount:         p.Amount,
		Verified:       true,
		Metadata:       p.Metadata,
		Raw:            p.Raw,
	}, nil
}

// paymentReservationRef prefers the reservation ID embedded in the payment's
// metadata over the external reference, the same precedence the checkout
// preference was built with.
func paymentReservationRef(p *ProviderPayment) (uuid.UUID, error) {
	if p.Metadata != nil && p.Metadata.ReservationID != "" {
		if id, err := uuid.Parse(p.Metadata.ReservationID); err == nil {
			return id, nil
		}
	}
	return uuid.Parse(p.ExternalReference)
}

// resolveByOrder accepts a merchant order as payment evidence when the order
// is closed, or when its paid amount already covers the expected deposit.
func (r *paymentResolverImpl) resolveByOrder(ctx context.Context, orderID string) (*Resolution, error) {
	order, err := r.gateway.MerchantOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, nil
		}
		return nil, err
	}

	reservationID, err := uuid.Parse(order.ExternalReference)
	if err != nil {
		return &Resolution{
			Outcome:        OutcomeIgnored,
			Reason:         fmt.Sprintf("order %s carries no reservation reference", order.ID),
			ProviderID:     orderProviderID(order),
			ProviderStatus: order.Status,
			Raw:            order.Raw,
		}, nil
	}

	expectedDeposit, err := r.expectedDeposit(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	threshold := expectedDeposit
	if threshold < 1 {
		threshold = 1
	}

	if order.Status != "closed" && order.PaidAmount < threshold {
		return &Resolution{
			Outcome:        OutcomeNotReady,
			Reason:         fmt.Sprintf("order %s is %s with paid amount %d below %d", order.ID, order.Status, order.PaidAmount, threshold),
			ProviderID:     orderProviderID(order),
			ProviderStatus: order.Status,
			Raw:            order.Raw,
		}, nil
	}

	return &Resolution{
		Outcome:        OutcomeResolved,
		ReservationID:  reservationID,
		ProviderID:     orderProviderID(order),
		ProviderStatus: order.Status,
		Amount:         order.PaidAmount,
		Verified:       true,
		Raw:            order.Raw,
	}, nil
}

// orderProviderID picks the identity recorded for an order-based
// resolution: the first approved payment, else the first payment, else a
// synthetic order-scoped ID so idempotency still holds.
func orderProviderID(order *ProviderOrder) string {
	for _, p := range order.Payments {
		if p.Status == payment.StatusApproved {
			return p.ID
		}
	}
	if len(order.Payments) > 0 {
		return order.Payments[0].ID
	}
	return "mo_" + order.ID
}

// resolveByReturn trusts the checkout return redirect without provider
// confirmation. Deployment-gated; the recorded payment stays unverified and
// uses the expected deposit as its amount. The synthesized identity reuses
// whatever provider ID the redirect carried, so a later remainder return
// with a different payment ID still records its own row.
func (r *paymentResolverImpl) resolveByReturn(ctx context.Context, in ResolveInput) (*Resolution, error) {
	reservationID, err := uuid.Parse(in.ExternalReference)
	if err != nil {
		return &Resolution{
			Outcome: OutcomeIgnored,
			Reason:  "return reference is not a reservation ID",
		}, nil
	}

	expectedDeposit, err := r.expectedDeposit(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	providerID := "ret_" + strconv.FormatInt(time.Now().Unix(), 10)
	switch {
	case in.PaymentID != "":
		providerID = "ret_" + in.PaymentID
	case in.OrderID != "":
		providerID = "ret_mo_" + in.OrderID
	}

	raw, _ := json.Marshal(map[string]any{
		"trusted_return":    true,
		"status_from_url":   in.ReturnStatus,
		"payment_id":        in.PaymentID,
		"merchant_order_id": in.OrderID,
	})

	return &Resolution{
		Outcome:        OutcomeResolved,
		ReservationID:  reservationID,
		ProviderID:     providerID,
		ProviderStatus: in.ReturnStatus,
		Amount:         expectedDeposit,
		Verified:       false,
		Raw:            raw,
	}, nil
}

func (r *paymentResolverImpl) expectedDeposit(ctx context.Context, reservationID uuid.UUID) (int64, error) {
	var deposit int64
	err := r.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reservations().Find(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		deposit = snap.DepositAmount
		return nil
	})
	return deposit, err
}
