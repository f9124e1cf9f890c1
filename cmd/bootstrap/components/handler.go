package components

import (
	"childcare-booking/internal/handler"
	"childcare-booking/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAvailabilityHandler,
		api.NewReservationHandler,
		api.NewPaymentHandler,
		api.NewWebhookHandler,
	),
	fx.Invoke(handler.NewRouter),
)
