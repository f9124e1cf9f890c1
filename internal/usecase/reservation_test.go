//go:build unit

package usecase_test

import (
	"context"
	"testing"

	reqdto "childcare-booking/internal/handler/dto/request"
	"childcare-booking/internal/usecase"
	"childcare-booking/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservationUC(uow *fake.UoW) usecase.ReservationUseCase {
	return usecase.NewReservationUseCase(uow, 9, 20)
}

func strPtr(s string) *string { return &s }

func createRequest() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		Guardian: reqdto.GuardianPayload{
			Name:  "Ana García",
			Email: "ana@example.com",
			Phone: strPtr("+549115555555"),
		},
		Date: "2026-09-15",
		Hour: 9,
		Children: []reqdto.ChildPayload{
			{FullName: "Luz García", AgeYears: 4, DNI: strPtr("51222333"), Hours: 2},
			{FullName: "Teo García", AgeYears: 6, Hours: 1},
		},
	}
}

func TestCreateDraft(t *testing.T) {
	t.Run("prices the draft from settings", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		view, err := uc.CreateDraft(context.Background(), createRequest())
		require.NoError(t, err)

		assert.Equal(t, "draft", view.Status)
		assert.Equal(t, 3, view.Totals.TotalHours)
		assert.Equal(t, int64(42000), view.Totals.TotalAmount)
		assert.Equal(t, int64(21000), view.Totals.DepositAmount)
	})

	t.Run("reuses the guardian on a second booking", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		first, err := uc.CreateDraft(context.Background(), createRequest())
		require.NoError(t, err)
		second, err := uc.CreateDraft(context.Background(), createRequest())
		require.NoError(t, err)

		firstSnap := uow.ReservationStore.Get(first.ID)
		secondSnap := uow.ReservationStore.Get(second.ID)
		assert.Equal(t, firstSnap.GuardianID, secondSnap.GuardianID)

		children, err := uow.GuardianStore.FindChildren(context.Background(), firstSnap.GuardianID)
		require.NoError(t, err)
		assert.Len(t, children, 2, "children must be matched, not duplicated")
	})

	t.Run("rejects hours outside operating hours", func(t *testing.T) {
		uc := newReservationUC(fake.NewUoW())

		req := createRequest()
		req.Hour = 22
		_, err := uc.CreateDraft(context.Background(), req)
		require.ErrorIs(t, err, usecase.ErrOutsideOperatingHour)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		uc := newReservationUC(fake.NewUoW())

		req := createRequest()
		req.Date = "15/09/2026"
		_, err := uc.CreateDraft(context.Background(), req)
		require.ErrorIs(t, err, usecase.ErrInvalidSlot)
	})

	t.Run("missing email falls back to a guest identity", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		req := createRequest()
		req.Guardian.Email = ""
		view, err := uc.CreateDraft(context.Background(), req)
		require.NoError(t, err)

		snap := uow.ReservationStore.Get(view.ID)
		guardian := uow.GuardianStore.Get(snap.GuardianID)
		assert.Contains(t, guardian.Email, "guest+")
	})
}

func TestUpdateChildren(t *testing.T) {
	t.Run("replaces and reprices", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		view, err := uc.CreateDraft(context.Background(), createRequest())
		require.NoError(t, err)

		updated, err := uc.UpdateChildren(context.Background(), view.ID, reqdto.UpdateChildrenRequest{
			Children: []reqdto.ChildPayload{
				{FullName: "Luz García", AgeYears: 4, DNI: strPtr("51222333"), Hours: 4},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 4, updated.Totals.TotalHours)
		assert.Equal(t, int64(56000), updated.Totals.TotalAmount)
		assert.Equal(t, []int{4}, uow.ReservationStore.Get(view.ID).ChildrenHours)
	})

	t.Run("completed reservation rejects edits", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		view, err := uc.CreateDraft(context.Background(), createRequest())
		require.NoError(t, err)

		snap := uow.ReservationStore.Get(view.ID)
		snap.Status = "completed"
		uow.ReservationStore.Seed(snap)

		_, err = uc.UpdateChildren(context.Background(), view.ID, reqdto.UpdateChildrenRequest{
			Children: []reqdto.ChildPayload{{FullName: "Luz García", AgeYears: 4, Hours: 1}},
		})
		require.ErrorIs(t, err, usecase.ErrReservationCompleted)
	})
}

func TestAdvanceToPendingPayment(t *testing.T) {
	t.Run("draft with deposit advances", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		view, err := uc.CreateDraft(context.Background(), createRequest())
		require.NoError(t, err)

		advanced, err := uc.AdvanceToPendingPayment(context.Background(), view.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending_payment", advanced.Status)

		// idempotent
		again, err := uc.AdvanceToPendingPayment(context.Background(), view.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending_payment", again.Status)
	})

	t.Run("draft without children cannot advance", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := newReservationUC(uow)

		req := createRequest()
		req.Children = nil
		view, err := uc.CreateDraft(context.Background(), req)
		require.NoError(t, err)

		_, err = uc.AdvanceToPendingPayment(context.Background(), view.ID)
		require.Error(t, err)
	})
}
