package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ganzorig/qpaygate/internal/adapter/qpay"
	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
	"github.com/ganzorig/qpaygate/internal/domain/repository"
)

// PaymentOptions carries the merchant-level invoice settings.
type PaymentOptions struct {
	InvoiceCode string
	CallbackURL string
}

// PaymentUseCase drives invoice creation and payment confirmation.
type PaymentUseCase struct {
	orders repository.OrderRepository
	client qpay.Client
	opts   PaymentOptions
	logger *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, client qpay.Client, opts PaymentOptions, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, client: client, opts: opts, logger: logger}
}

// CreateInvoice registers a QPay invoice for the order and attaches it,
// replacing any previous invoice. Each attempt submits a fresh payment
// reference so provider-side correlation never collides across retries.
func (u *PaymentUseCase) CreateInvoice(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	order, err := u.orders.GetByNumber(ctx, merchantID, number)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusPaid {
		return nil, domainErrors.ErrOrderNotPayable
	}

	description := order.Description
	if description == "" {
		description = fmt.Sprintf("Order #%s", order.Number)
	}

	ref := uuid.NewString()
	resp, err := u.client.CreateInvoice(ctx, qpay.InvoiceRequest{
		InvoiceCode:         u.opts.InvoiceCode,
		SenderInvoiceNo:     ref,
		InvoiceReceiverCode: order.ReceiverEmail,
		InvoiceDescription:  description,
		Amount:              order.Amount,
		CallbackURL:         u.opts.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	invoice := &model.Invoice{
		OrderID:    order.ID,
		InvoiceID:  resp.InvoiceID,
		PaymentRef: ref,
		QRImage:    resp.QRImage,
		QRText:     resp.QRText,
		Deeplinks:  resp.URLs,
	}
	if err := u.orders.AttachInvoice(ctx, order.ID, invoice); err != nil {
		return nil, err
	}

	order.Invoice = invoice
	order.Status = model.OrderStatusAwaitingPayment
	u.logger.Info("invoice created",
		slog.String("number", order.Number),
		slog.String("invoice_id", invoice.InvoiceID),
	)
	return order, nil
}

// Reconcile verifies the invoice against the provider and finalizes the
// order. Webhook, poll, and sweeper all funnel through here; it is safe to
// call arbitrarily often and concurrently because the paid transition is a
// storage-level compare-and-set.
func (u *PaymentUseCase) Reconcile(ctx context.Context, invoiceID string) (model.PaymentStatus, error) {
	order, err := u.orders.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return "", err
	}

	result, err := u.client.CheckPayment(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if !result.Paid() {
		return model.PaymentStatusUnpaid, nil
	}

	note := fmt.Sprintf("QPay payment confirmed. Invoice: %s", invoiceID)
	changed, err := u.orders.MarkPaid(ctx, order.ID, note)
	if err != nil {
		return "", err
	}
	if changed {
		u.logger.Info("order paid",
			slog.String("number", order.Number),
			slog.String("invoice_id", invoiceID),
		)
	}
	return model.PaymentStatusPaid, nil
}
