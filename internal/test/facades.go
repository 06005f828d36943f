package test

import (
	"context"
	"sync"

	"github.com/ganzorig/qpaygate/internal/domain/model"
)

// AuthFacadeStub provides controllable behaviour for auth endpoints.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseTokenFn   func(string) (int64, error)
}

// Register delegates to provided function or returns a static token.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate delegates to provided function or returns a static token.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken delegates to provided function or resolves to merchant 1.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return 1, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateOrderFn   func(context.Context, model.OrderDraft) (*model.Order, bool, error)
	OrderFn         func(context.Context, int64, string) (*model.Order, error)
	OrdersFn        func(context.Context, int64) ([]model.Order, error)
	CreateInvoiceFn func(context.Context, int64, string) (*model.Order, error)
}

// CreateOrder delegates to provided function or returns a default order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, draft)
	}
	return &model.Order{MerchantID: draft.MerchantID, Number: draft.Number, Amount: draft.Amount, Status: model.OrderStatusPending}, true, nil
}

// Order returns preconfigured order.
func (s OrderFacadeStub) Order(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, merchantID, number)
	}
	return &model.Order{MerchantID: merchantID, Number: number, Status: model.OrderStatusPending}, nil
}

// Orders returns preconfigured orders.
func (s OrderFacadeStub) Orders(ctx context.Context, merchantID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, merchantID)
	}
	return []model.Order{{Number: "1"}}, nil
}

// CreateInvoice delegates to provided function or returns an invoiced order.
func (s OrderFacadeStub) CreateInvoice(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	if s.CreateInvoiceFn != nil {
		return s.CreateInvoiceFn(ctx, merchantID, number)
	}
	return &model.Order{
		MerchantID: merchantID,
		Number:     number,
		Status:     model.OrderStatusAwaitingPayment,
		Invoice:    &model.Invoice{InvoiceID: "inv-1"},
	}, nil
}

// PaymentFacadeStub simulates confirmation reconciliation.
type PaymentFacadeStub struct {
	ConfirmFn func(context.Context, string) (model.PaymentStatus, error)

	mu    sync.Mutex
	calls []string
}

// ConfirmPayment delegates to provided function or reports unpaid.
func (s *PaymentFacadeStub) ConfirmPayment(ctx context.Context, invoiceID string) (model.PaymentStatus, error) {
	s.mu.Lock()
	s.calls = append(s.calls, invoiceID)
	s.mu.Unlock()
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, invoiceID)
	}
	return model.PaymentStatusUnpaid, nil
}

// Calls returns invoice ids passed to ConfirmPayment.
func (s *PaymentFacadeStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// GatewayFacadeStub aggregates stubs for router-level tests.
type GatewayFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	Payments PaymentFacadeStub
}

// ConfirmPayment delegates to the embedded payment stub.
func (s *GatewayFacadeStub) ConfirmPayment(ctx context.Context, invoiceID string) (model.PaymentStatus, error) {
	return s.Payments.ConfirmPayment(ctx, invoiceID)
}

// TokenParserStub resolves any token to the configured merchant.
type TokenParserStub struct {
	ID  int64
	Err error
}

// ParseToken returns the configured merchant id or error.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// SweeperFacadeStub feeds batches of orders to the reconcile sweeper.
type SweeperFacadeStub struct {
	mu        sync.Mutex
	Batches   [][]model.Order
	ConfirmFn func(context.Context, string) (model.PaymentStatus, error)
	Confirmed []string
}

// Lock acquires the stub mutex for inspection.
func (s *SweeperFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases the stub mutex.
func (s *SweeperFacadeStub) Unlock() { s.mu.Unlock() }

// OrdersAwaitingPayment pops the next configured batch.
func (s *SweeperFacadeStub) OrdersAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

// ConfirmPayment records the invoice id and delegates to ConfirmFn.
func (s *SweeperFacadeStub) ConfirmPayment(ctx context.Context, invoiceID string) (model.PaymentStatus, error) {
	s.mu.Lock()
	s.Confirmed = append(s.Confirmed, invoiceID)
	s.mu.Unlock()
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, invoiceID)
	}
	return model.PaymentStatusPaid, nil
}
