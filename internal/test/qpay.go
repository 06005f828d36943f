package test

import (
	"context"

	"github.com/ganzorig/qpaygate/internal/adapter/qpay"
)

// QPayClientStub provides controllable provider behaviour for tests.
type QPayClientStub struct {
	CreateInvoiceFn func(context.Context, qpay.InvoiceRequest) (*qpay.InvoiceResponse, error)
	CheckPaymentFn  func(context.Context, string) (*qpay.PaymentCheckResponse, error)
}

// CreateInvoice delegates to provided function or returns a default invoice.
func (s QPayClientStub) CreateInvoice(ctx context.Context, req qpay.InvoiceRequest) (*qpay.InvoiceResponse, error) {
	if s.CreateInvoiceFn != nil {
		return s.CreateInvoiceFn(ctx, req)
	}
	return &qpay.InvoiceResponse{InvoiceID: "inv-" + req.SenderInvoiceNo}, nil
}

// CheckPayment delegates to provided function or reports the invoice unpaid.
func (s QPayClientStub) CheckPayment(ctx context.Context, invoiceID string) (*qpay.PaymentCheckResponse, error) {
	if s.CheckPaymentFn != nil {
		return s.CheckPaymentFn(ctx, invoiceID)
	}
	return &qpay.PaymentCheckResponse{}, nil
}
