package model

import "time"

// OrderStatus describes the payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusPaid            OrderStatus = "PAID"
)

// Order describes a purchase registered by a merchant for settlement through QPay.
type Order struct {
	ID            int64
	MerchantID    int64
	Number        string
	Amount        float64
	ReceiverEmail string
	Description   string
	Status        OrderStatus
	Invoice       *Invoice
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time
}

// OrderDraft carries the fields required to register a new order.
type OrderDraft struct {
	MerchantID    int64
	Number        string
	Amount        float64
	ReceiverEmail string
	Description   string
}
