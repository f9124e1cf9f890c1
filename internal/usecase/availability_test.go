//go:build unit

package usecase_test

import (
	"context"
	"testing"

	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/usecase"
	"childcare-booking/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailability(t *testing.T) {
	booking := config.BookingConfig{OpenHour: 9, CloseHour: 12}

	t.Run("untouched hours show full capacity", func(t *testing.T) {
		uow := fake.NewUoW()
		uc := usecase.NewAvailabilityUseCase(uow, booking)

		hours, err := uc.GetAvailability(context.Background(), "2026-09-15")
		require.NoError(t, err)
		require.Len(t, hours, 3)

		assert.Equal(t, 9, hours[0].Hour)
		assert.Equal(t, "09:00", hours[0].HourHHMM)
		assert.Equal(t, 10, hours[0].Available)
	})

	t.Run("ledger usage reduces availability", func(t *testing.T) {
		uow := fake.NewUoW()
		uow.SlotStockStore.SeedUsed("2026-09-15", 10, 7)
		uc := usecase.NewAvailabilityUseCase(uow, booking)

		hours, err := uc.GetAvailability(context.Background(), "2026-09-15")
		require.NoError(t, err)

		assert.Equal(t, 7, hours[1].Used)
		assert.Equal(t, 3, hours[1].Available)
	})

	t.Run("overbooked hour clamps to zero", func(t *testing.T) {
		uow := fake.NewUoW()
		uow.SlotStockStore.SeedUsed("2026-09-15", 9, 14)
		uc := usecase.NewAvailabilityUseCase(uow, booking)

		hours, err := uc.GetAvailability(context.Background(), "2026-09-15")
		require.NoError(t, err)

		assert.Equal(t, 0, hours[0].Available)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		uc := usecase.NewAvailabilityUseCase(fake.NewUoW(), booking)

		_, err := uc.GetAvailability(context.Background(), "2026/09/15")
		require.ErrorIs(t, err, usecase.ErrInvalidDate)
	})
}
