//go:build unit

package usecase_test

import (
	"context"
	"testing"

	"childcare-booking/internal/pkg/poller"
	"childcare-booking/internal/usecase"
	"childcare-booking/internal/usecase/shared"
	"childcare-booking/tests/common/fake"

	reqdto "childcare-booking/internal/handler/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver returns a canned resolution, letting the tests exercise the
// reconciliation transaction in isolation.
type stubResolver struct {
	resolution *usecase.Resolution
	err        error
	calls      int
}

func (s *stubResolver) Resolve(_ context.Context, _ usecase.ResolveInput) (*usecase.Resolution, error) {
	s.calls++
	return s.resolution, s.err
}

func seedPendingReservation(uow *fake.UoW) shared.ReservationSnapshot {
	snap := shared.ReservationSnapshot{
		ID:              uuid.New(),
		GuardianID:      uuid.New(),
		Date:            "2026-09-15",
		Hour:            9,
		Status:          "pending_payment",
		HourlyRate:      14000,
		DepositPct:      50,
		TotalHours:      3,
		TotalAmount:     42000,
		DepositAmount:   21000,
		RemainingAmount: 21000,
		ChildrenHours:   []int{2, 1},
	}
	uow.ReservationStore.Seed(snap)
	return snap
}

func resolved(reservationID uuid.UUID, providerID string, amount int64) *usecase.Resolution {
	return &usecase.Resolution{
		Outcome:        usecase.OutcomeResolved,
		ReservationID:  reservationID,
		ProviderID:     providerID,
		ProviderStatus: "approved",
		Amount:         amount,
		Verified:       true,
	}
}

func newReconcile(uow *fake.UoW, resolver usecase.PaymentResolver) usecase.ReconcileUseCase {
	return usecase.NewReconcileUseCase(uow, resolver, poller.New(1, 0))
}

func TestReconcile(t *testing.T) {
	t.Run("approved payment completes reservation and consumes capacity", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)
		uc := newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-1", 21000)})

		result, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.NoError(t, err)

		assert.Equal(t, usecase.OutcomeResolved, result.Outcome)
		assert.True(t, result.Applied)
		assert.Equal(t, "deposit", result.Kind)

		assert.Equal(t, "completed", uow.ReservationStore.Get(snap.ID).Status)

		used9, _ := uow.SlotStockStore.Used(context.Background(), "2026-09-15", 9)
		used10, _ := uow.SlotStockStore.Used(context.Background(), "2026-09-15", 10)
		assert.Equal(t, 2, used9)
		assert.Equal(t, 1, used10)

		payments := uow.PaymentStore.All()
		require.Len(t, payments, 1)
		assert.Equal(t, "pay-1", payments[0].ProviderID)
		assert.Equal(t, int64(21000), payments[0].Amount)
		assert.True(t, payments[0].Verified)
	})

	t.Run("replaying the same provider payment changes nothing", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)
		uc := newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-1", 21000)})

		_, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.NoError(t, err)

		result, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.NoError(t, err)

		assert.False(t, result.Applied)
		assert.Len(t, uow.PaymentStore.All(), 1)

		used9, _ := uow.SlotStockStore.Used(context.Background(), "2026-09-15", 9)
		assert.Equal(t, 2, used9, "ledger must not be applied twice")
	})

	t.Run("second distinct payment records without touching the ledger", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)

		uc := newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-1", 21000)})
		_, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.NoError(t, err)

		uc = newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-2", 25000)})
		result, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-2"})
		require.NoError(t, err)

		assert.False(t, result.Applied, "remainder payment must not re-apply the ledger")
		assert.Equal(t, "remainder", result.Kind)
		assert.Len(t, uow.PaymentStore.All(), 2)

		used9, _ := uow.SlotStockStore.Used(context.Background(), "2026-09-15", 9)
		assert.Equal(t, 2, used9)
	})

	t.Run("full slot rejects reconciliation loudly", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)
		uow.SlotStockStore.SeedUsed("2026-09-15", 9, 9) // 9 used, max 10, needs 2

		uc := newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-1", 21000)})
		_, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.ErrorIs(t, err, usecase.ErrNoCapacity)

		assert.Equal(t, "pending_payment", uow.ReservationStore.Get(snap.ID).Status)
		assert.Empty(t, uow.PaymentStore.All())
	})

	t.Run("reservation without children cannot be reconciled", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)
		empty := snap
		empty.ChildrenHours = nil
		uow.ReservationStore.Seed(empty)

		uc := newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-1", 21000)})
		_, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.ErrorIs(t, err, usecase.ErrIncompleteReservation)
	})

	t.Run("payment metadata wins over stored children", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)

		res := resolved(snap.ID, "pay-1", 21000)
		res.Metadata = &usecase.SlotMetadata{Date: "2026-09-16", Hour: 11, ChildrenHours: []int{1}}

		uc := newReconcile(uow, &stubResolver{resolution: res})
		_, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.NoError(t, err)

		usedMeta, _ := uow.SlotStockStore.Used(context.Background(), "2026-09-16", 11)
		usedStored, _ := uow.SlotStockStore.Used(context.Background(), "2026-09-15", 9)
		assert.Equal(t, 1, usedMeta)
		assert.Equal(t, 0, usedStored)
	})

	t.Run("unknown reservation surfaces not found", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReconcile(uow, &stubResolver{resolution: resolved(uuid.New(), "pay-1", 21000)})

		_, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.ErrorIs(t, err, usecase.ErrReservationNotFound)
	})

	t.Run("unresolved identity reports not ready", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReconcile(uow, &stubResolver{resolution: &usecase.Resolution{Outcome: usecase.OutcomeNotReady}})

		result, err := uc.Reconcile(context.Background(), reqdto.ReconcileRequest{PaymentID: "pay-1"})
		require.ErrorIs(t, err, usecase.ErrPaymentNotReady)
		assert.Equal(t, usecase.OutcomeNotReady, result.Outcome)
	})
}

func TestFinalize(t *testing.T) {
	t.Run("retries until the payment resolves", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)

		attempts := 0
		resolver := resolveFunc(func(_ context.Context, _ usecase.ResolveInput) (*usecase.Resolution, error) {
			attempts++
			if attempts < 3 {
				return &usecase.Resolution{Outcome: usecase.OutcomeNotReady}, nil
			}
			return resolved(snap.ID, "pay-1", 21000), nil
		})

		uc := usecase.NewReconcileUseCase(uow, resolver, poller.New(3, 0))
		result, err := uc.Finalize(context.Background(), reqdto.FinalizeRequest{PaymentID: "pay-1"})
		require.NoError(t, err)

		assert.Equal(t, 3, attempts)
		assert.True(t, result.Applied)
	})

	t.Run("exhausted attempts report not ready", func(t *testing.T) {
		uow := fake.NewUoW()
		seedPendingReservation(uow)

		uc := newReconcile(uow, &stubResolver{resolution: &usecase.Resolution{Outcome: usecase.OutcomeNotReady}})
		result, err := uc.Finalize(context.Background(), reqdto.FinalizeRequest{PaymentID: "pay-1"})
		require.ErrorIs(t, err, usecase.ErrPaymentNotReady)
		assert.Equal(t, usecase.OutcomeNotReady, result.Outcome)
	})
}

func TestHandleWebhook(t *testing.T) {
	t.Run("unhandled topic is acknowledged as ignored", func(t *testing.T) {
		uow := fake.NewUoW()
		resolver := &stubResolver{}

		uc := newReconcile(uow, resolver)
		result, err := uc.HandleWebhook(context.Background(), usecase.WebhookInput{Topic: "plan", DataID: "1"})
		require.NoError(t, err)

		assert.Equal(t, usecase.OutcomeIgnored, result.Outcome)
		assert.Zero(t, resolver.calls, "resolver must not be called for unhandled topics")
	})

	t.Run("payment topic resolves and applies", func(t *testing.T) {
		uow := fake.NewUoW()
		snap := seedPendingReservation(uow)

		uc := newReconcile(uow, &stubResolver{resolution: resolved(snap.ID, "pay-1", 21000)})
		result, err := uc.HandleWebhook(context.Background(), usecase.WebhookInput{Topic: "payment", DataID: "pay-1"})
		require.NoError(t, err)

		assert.True(t, result.Applied)
		assert.Equal(t, "completed", uow.ReservationStore.Get(snap.ID).Status)
		assert.Equal(t, "approved", uow.PaymentEventStore.Status("pay-1"))
	})

	t.Run("non-approved notification still lands in the event log", func(t *testing.T) {
		uow := fake.NewUoW()
		seedPendingReservation(uow)

		uc := newReconcile(uow, &stubResolver{resolution: &usecase.Resolution{
			Outcome:        usecase.OutcomeIgnored,
			Reason:         `payment pay-1 has status "pending"`,
			ProviderID:     "pay-1",
			ProviderStatus: "pending",
		}})
		result, err := uc.HandleWebhook(context.Background(), usecase.WebhookInput{Topic: "payment", DataID: "pay-1"})
		require.NoError(t, err)

		assert.Equal(t, usecase.OutcomeIgnored, result.Outcome)
		assert.Equal(t, "pending", uow.PaymentEventStore.Status("pay-1"), "audit log records the provider's observed status")
		assert.Empty(t, uow.PaymentStore.All())
	})
}

type resolveFunc func(ctx context.Context, in usecase.ResolveInput) (*usecase.Resolution, error)

func (f resolveFunc) Resolve(ctx context.Context, in usecase.ResolveInput) (*usecase.Resolution, error) {
	return f(ctx, in)
}
