package app

import (
	"context"

	"github.com/ganzorig/qpaygate/internal/domain/model"
	"github.com/ganzorig/qpaygate/internal/usecase"
)

// GatewayFacade aggregates the application use cases behind a single surface
// consumed by HTTP handlers and the reconcile sweeper.
type GatewayFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
}

func NewGatewayFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase) *GatewayFacade {
	return &GatewayFacade{auth: auth, orders: orders, payments: payments}
}

func (f *GatewayFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *GatewayFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *GatewayFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *GatewayFacade) CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error) {
	return f.orders.Register(ctx, draft)
}

func (f *GatewayFacade) Order(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	return f.orders.Get(ctx, merchantID, number)
}

func (f *GatewayFacade) Orders(ctx context.Context, merchantID int64) ([]model.Order, error) {
	return f.orders.ListByMerchant(ctx, merchantID)
}

func (f *GatewayFacade) CreateInvoice(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	return f.payments.CreateInvoice(ctx, merchantID, number)
}

func (f *GatewayFacade) ConfirmPayment(ctx context.Context, invoiceID string) (model.PaymentStatus, error) {
	return f.payments.Reconcile(ctx, invoiceID)
}

func (f *GatewayFacade) OrdersAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.SelectAwaitingPayment(ctx, limit)
}
