package handlers

import (
	"context"

	"github.com/ganzorig/qpaygate/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error)
	Order(ctx context.Context, merchantID int64, number string) (*model.Order, error)
	Orders(ctx context.Context, merchantID int64) ([]model.Order, error)
	CreateInvoice(ctx context.Context, merchantID int64, number string) (*model.Order, error)
}

// PaymentFacade confirms payments against the provider.
type PaymentFacade interface {
	ConfirmPayment(ctx context.Context, invoiceID string) (model.PaymentStatus, error)
}

// GatewayFacade aggregates the full set of operations used across handlers.
type GatewayFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
}
