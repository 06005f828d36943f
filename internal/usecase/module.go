package usecase

import (
	"go.uber.org/fx"

	"github.com/ganzorig/qpaygate/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewOrderUseCase,
	NewPaymentUseCase,
	newPaymentOptions,
)

func newPaymentOptions(cfg *config.Config) PaymentOptions {
	return PaymentOptions{
		InvoiceCode: cfg.QPayInvoiceCode,
		CallbackURL: cfg.CallbackURL,
	}
}
