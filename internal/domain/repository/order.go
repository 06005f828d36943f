package repository

import (
	"context"

	"github.com/ganzorig/qpaygate/internal/domain/model"
)

// OrderRepository describes persistence operations with orders and their invoices.
type OrderRepository interface {
	Create(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error)
	GetByNumber(ctx context.Context, merchantID int64, number string) (*model.Order, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (*model.Order, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]model.Order, error)

	// AttachInvoice stores the invoice for the order, replacing any previous
	// one, and moves the order to AWAITING_PAYMENT unless it is already paid.
	AttachInvoice(ctx context.Context, orderID int64, invoice *model.Invoice) error

	// MarkPaid transitions AWAITING_PAYMENT to PAID as a single compare-and-set
	// and records the note only when the transition actually happened.
	// Returns whether this call performed the transition.
	MarkPaid(ctx context.Context, orderID int64, note string) (bool, error)

	SelectAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error)
}
