package bootstrap

import (
	"childcare-booking/internal/infra/mercadopago"
	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/usecase"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(usecase.PaymentGateway)),
		),
	),
)

func NewPaymentGateway(cfg config.Config) *mercadopago.Client {
	return mercadopago.NewClient(cfg.Provider)
}
