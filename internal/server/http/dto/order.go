package dto

import (
	"time"

	"github.com/ganzorig/qpaygate/internal/domain/model"
)

// CreateOrderRequest registers an order for payment.
type CreateOrderRequest struct {
	Number        string  `json:"number"`
	Amount        float64 `json:"amount"`
	ReceiverEmail string  `json:"receiver_email"`
	Description   string  `json:"description"`
}

// InvoicePayload carries the QR/deeplink data shown on the payment page.
type InvoicePayload struct {
	InvoiceID string           `json:"invoice_id"`
	QRImage   string           `json:"qr_image,omitempty"`
	QRText    string           `json:"qr_text,omitempty"`
	URLs      []model.Deeplink `json:"urls"`
}

// OrderResponse represents an order with its current payment state.
type OrderResponse struct {
	Number    string          `json:"number"`
	Status    string          `json:"status"`
	Amount    float64         `json:"amount"`
	Invoice   *InvoicePayload `json:"invoice,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}
