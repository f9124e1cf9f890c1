package usecase

import (
	"context"
	"errors"

	"childcare-booking/internal/domain/reservation"
	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/usecase/shared"
)

var ErrInvalidDate = errors.New("invalid availability date")

// HourAvailability is one bookable hour of a day with its remaining
// child-hour capacity.
type HourAvailability struct {
	Hour      int
	HourHHMM  string
	Used      int
	Capacity  int
	Available int
}

type AvailabilityUseCase interface {
	GetAvailability(ctx context.Context, date string) ([]HourAvailability, error)
}

type availabilityUseCaseImpl struct {
	uow     shared.UnitOfWork
	booking config.BookingConfig
}

func NewAvailabilityUseCase(uow shared.UnitOfWork, booking config.BookingConfig) AvailabilityUseCase {
	return &availabilityUseCaseImpl{uow: uow, booking: booking}
}

// GetAvailability reports every open hour of the day. Hours the slot ledger
// never touched show full capacity.
func (a *availabilityUseCaseImpl) GetAvailability(ctx context.Context, date string) ([]HourAvailability, error) {
	if !reservation.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	var out []HourAvailability
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		settings, err := tx.AppConfig().Get(ctx)
		if err != nil {
			return err
		}
		usedByHour, err := tx.SlotStock().UsedByDate(ctx, date)
		if err != nil {
			return err
		}

		for hour := a.booking.OpenHour; hour < a.booking.CloseHour; hour++ {
			used := usedByHour[hour]
			available := settings.MaxPerHour - used
			if available < 0 {
				available = 0
			}
			slot, err := reservation.NewSlot(date, hour)
			if err != nil {
				return err
			}
			out = append(out, HourAvailability{
				Hour:      hour,
				HourHHMM:  slot.HourHHMM(),
				Used:      used,
				Capacity:  settings.MaxPerHour,
				Available: available,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
