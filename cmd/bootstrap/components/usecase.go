package components

import (
	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/pkg/poller"
	"childcare-booking/internal/usecase"
	"childcare-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		NewAvailabilityUseCase,
		NewReservationUseCase,
		NewCheckoutUseCase,
		NewPaymentResolver,
		NewReconcileUseCase,
	),
)

func NewAvailabilityUseCase(uow shared.UnitOfWork, cfg config.Config) usecase.AvailabilityUseCase {
	return usecase.NewAvailabilityUseCase(uow, cfg.Booking)
}

func NewReservationUseCase(uow shared.UnitOfWork, cfg config.Config) usecase.ReservationUseCase {
	return usecase.NewReservationUseCase(uow, cfg.Booking.OpenHour, cfg.Booking.CloseHour)
}

func NewCheckoutUseCase(uow shared.UnitOfWork, gateway usecase.PaymentGateway, cfg config.Config) usecase.CheckoutUseCase {
	return usecase.NewCheckoutUseCase(uow, gateway, cfg.Provider)
}

func NewPaymentResolver(gateway usecase.PaymentGateway, uow shared.UnitOfWork, cfg config.Config) usecase.PaymentResolver {
	return usecase.NewPaymentResolver(gateway, uow, cfg.Provider.AllowReturnTrust)
}

func NewReconcileUseCase(uow shared.UnitOfWork, resolver usecase.PaymentResolver, cfg config.Config) usecase.ReconcileUseCase {
	p := poller.New(cfg.Provider.FinalizeAttempts, cfg.Provider.FinalizeDelay)
	return usecase.NewReconcileUseCase(uow, resolver, p)
}
