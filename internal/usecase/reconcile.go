package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"childcare-booking/internal/domain/capacity"
	"childcare-booking/internal/domain/payment"
	"childcare-booking/internal/domain/reservation"
	reqdto "childcare-booking/internal/handler/dto/request"
	"childcare-booking/internal/infra"
	"childcare-booking/internal/pkg/poller"
	"childcare-booking/internal/usecase/shared"
)

var (
	ErrIncompleteReservation = errors.New("reservation has no children to reconcile")
	ErrNoCapacity            = errors.New("slot capacity exceeded during reconciliation")
	ErrPaymentNotReady       = errors.New("payment is not confirmable yet")
)

// WebhookInput is a provider notification after transport decoding: the
// topic plus whichever resource ID the notification carries.
type WebhookInput struct {
	Topic   string
	DataID  string
	OrderID string
}

// ReconcileResult reports what a confirmation attempt did, for logging and
// the HTTP layer.
type ReconcileResult struct {
	Outcome       Outcome
	Reason        string
	ReservationID string
	ProviderID    string
	Kind          string
	Applied       bool
}

type ReconcileUseCase interface {
	HandleWebhook(ctx context.Context, in WebhookInput) (*ReconcileResult, error)
	Finalize(ctx context.Context, req reqdto.FinalizeRequest) (*ReconcileResult, error)
	Reconcile(ctx context.Context, req reqdto.ReconcileRequest) (*ReconcileResult, error)
}

type reconcileUseCaseImpl struct {
	uow      shared.UnitOfWork
	resolver PaymentResolver
	poller   poller.Poller
}

func NewReconcileUseCase(uow shared.UnitOfWork, resolver PaymentResolver, p poller.Poller) ReconcileUseCase {
	return &reconcileUseCaseImpl{uow: uow, resolver: resolver, poller: p}
}

// HandleWebhook resolves a provider notification and, when it confirms a
// payment, applies the reconciliation. Non-payment topics and non-approved
// payments are acknowledged without effect.
func (u *reconcileUseCaseImpl) HandleWebhook(ctx context.Context, in WebhookInput) (*ReconcileResult, error) {
	input := ResolveInput{}
	switch in.Topic {
	case "payment":
		input.PaymentID = in.DataID
	case "merchant_order", "topic_merchant_order_wh":
		input.OrderID = firstNonEmpty(in.OrderID, in.DataID)
	default:
		return &ReconcileResult{Outcome: OutcomeIgnored, Reason: "unhandled topic " + in.Topic}, nil
	}

	res, err := u.resolver.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	u.recordEvent(ctx, res)

	switch res.Outcome {
	case OutcomeResolved:
		return u.apply(ctx, res)
	case OutcomeNotReady:
		return &ReconcileResult{Outcome: OutcomeNotReady, Reason: res.Reason}, ErrPaymentNotReady
	default:
		return &ReconcileResult{Outcome: res.Outcome, Reason: res.Reason}, nil
	}
}

// Finalize is the checkout-return flow: the frontend forwards the provider's
// redirect parameters and we probe until the payment resolves or attempts
// run out. The attempt budget belongs to configuration, not to this code.
func (u *reconcileUseCaseImpl) Finalize(ctx context.Context, req reqdto.FinalizeRequest) (*ReconcileResult, error) {
	input := ResolveInput{
		PaymentID:         req.PaymentID,
		OrderID:           req.MerchantOrderID,
		ExternalReference: req.ExternalReference,
		ReturnStatus:      req.Status,
	}

	var resolution *Resolution
	done, err := u.poller.Do(ctx, func(ctx context.Context) (bool, error) {
		res, err := u.resolver.Resolve(ctx, input)
		if err != nil {
			return false, err
		}
		if res.Outcome == OutcomeNotReady {
			return false, nil
		}
		resolution = res
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !done {
		return &ReconcileResult{Outcome: OutcomeNotReady, Reason: "provider has not confirmed the payment"}, ErrPaymentNotReady
	}

	if resolution.Outcome != OutcomeResolved {
		return &ReconcileResult{Outcome: resolution.Outcome, Reason: resolution.Reason}, nil
	}
	return u.apply(ctx, resolution)
}

// Reconcile is the operator replay: one resolution attempt, no polling.
func (u *reconcileUseCaseImpl) Reconcile(ctx context.Context, req reqdto.ReconcileRequest) (*ReconcileResult, error) {
	res, err := u.resolver.Resolve(ctx, ResolveInput{
		PaymentID:         req.PaymentID,
		OrderID:           req.MerchantOrderID,
		ExternalReference: req.ExternalReference,
		ReturnStatus:      req.Status,
	})
	if err != nil {
		return nil, err
	}

	switch res.Outcome {
	case OutcomeResolved:
		return u.apply(ctx, res)
	case OutcomeNotReady:
		return &ReconcileResult{Outcome: OutcomeNotReady, Reason: res.Reason}, ErrPaymentNotReady
	default:
		return &ReconcileResult{Outcome: res.Outcome, Reason: res.Reason}, nil
	}
}

// apply runs the reconciliation transaction:
//
//  1. lock the reservation row
//  2. if not yet completed: consume slot capacity and mark completed
//  3. record the payment unless its provider ID is already known
//
// Step 2 runs at most once per reservation and step 3 at most once per
// provider payment, so replays of the same notification are no-ops.
func (u *reconcileUseCaseImpl) apply(ctx context.Context, res *Resolution) (*ReconcileResult, error) {
	result := &ReconcileResult{
		Outcome:       OutcomeResolved,
		ReservationID: res.ReservationID.String(),
		ProviderID:    res.ProviderID,
	}

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reservations().FindForUpdate(ctx, res.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		if snap.Status != reservation.StatusCompleted.String() {
			if err := u.consumeCapacity(ctx, tx, snap, res.Metadata); err != nil {
				return err
			}
			if err := tx.Reservations().UpdateStatus(ctx, res.ReservationID, reservation.StatusCompleted); err != nil {
				return err
			}
			result.Applied = true
		}

		exists, err := tx.Payments().ExistsByProviderID(ctx, payment.Provider, res.ProviderID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		kind := payment.Classify(res.Amount, snap.TotalAmount, snap.DepositAmount)
		result.Kind = kind.String()
		return tx.Payments().Create(ctx, shared.NewPayment{
			Provider:      payment.Provider,
			ProviderID:    res.ProviderID,
			ReservationID: res.ReservationID,
			Amount:        res.Amount,
			Kind:          kind.String(),
			Status:        payment.StatusApproved,
			Verified:      res.Verified,
			Raw:           res.Raw,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment reconciled",
		"reservation_id", result.ReservationID,
		"provider_id", result.ProviderID,
		"kind", result.Kind,
		"ledger_applied", result.Applied,
		"verified", res.Verified)

	return result, nil
}

// consumeCapacity writes the slot ledger for the reservation. The payment
// metadata snapshot wins over the stored children when present. A full slot
// here is a real overbooking and must surface, not be absorbed.
func (u *reconcileUseCaseImpl) consumeCapacity(ctx context.Context, tx shared.Tx, snap *shared.ReservationSnapshot, meta *SlotMetadata) error {
	date, hour, childrenHours := snap.Date, snap.Hour, snap.ChildrenHours
	if meta != nil && reservation.ValidDate(meta.Date) && len(meta.ChildrenHours) > 0 {
		date, hour, childrenHours = meta.Date, meta.Hour, meta.ChildrenHours
	}
	if len(childrenHours) == 0 {
		return ErrIncompleteReservation
	}

	settings, err := tx.AppConfig().Get(ctx)
	if err != nil {
		return err
	}

	for _, inc := range capacity.Increments(date, hour, childrenHours) {
		// The check and the increment are one atomic statement so two
		// reconciliations of different reservations on the same slot
		// serialize on the slot row instead of racing the read.
		accepted, _, err := tx.SlotStock().TryIncrement(ctx, inc.Date, inc.Hour, inc.Count, settings.MaxPerHour)
		if err != nil {
			return err
		}
		if !accepted {
			used, _ := tx.SlotStock().Used(ctx, inc.Date, inc.Hour)
			return fmt.Errorf("%w: slot %s %02d:00 has %d used, needs %d more, max %d",
				ErrNoCapacity, inc.Date, inc.Hour, used, inc.Count, settings.MaxPerHour)
		}
	}
	return nil
}

// recordEvent keeps the latest provider-observed status per payment for
// audit, non-approved notifications included. Failures here never block
// reconciliation.
func (u *reconcileUseCaseImpl) recordEvent(ctx context.Context, res *Resolution) {
	if res.ProviderID == "" {
		return
	}
	status := res.ProviderStatus
	if status == "" {
		status = string(res.Outcome)
	}
	err := u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.PaymentEvents().Upsert(ctx, res.ProviderID, status, res.Raw)
	})
	if err != nil {
		slog.Warn("failed to record payment event", "provider_id", res.ProviderID, "error", err.Error())
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
