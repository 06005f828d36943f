package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
	"github.com/ganzorig/qpaygate/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// Register registers a new order. Returns whether the order was newly created;
// re-submitting the same number yields the existing order.
func (u *OrderUseCase) Register(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error) {
	draft.Number = strings.TrimSpace(draft.Number)
	if draft.Number == "" {
		return nil, false, domainErrors.ErrInvalidOrderNumber
	}
	if draft.Amount <= 0 {
		return nil, false, domainErrors.ErrInvalidAmount
	}

	return u.orders.Create(ctx, draft)
}

// Get returns a merchant's order with its invoice payload, when present.
func (u *OrderUseCase) Get(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	return u.orders.GetByNumber(ctx, merchantID, number)
}

// ListByMerchant returns orders sorted by creation time.
func (u *OrderUseCase) ListByMerchant(ctx context.Context, merchantID int64) ([]model.Order, error) {
	return u.orders.ListByMerchant(ctx, merchantID)
}

// SelectAwaitingPayment returns invoiced orders pending confirmation.
func (u *OrderUseCase) SelectAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectAwaitingPayment(ctx, limit)
}
