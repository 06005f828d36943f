package model

import "time"

// Deeplink opens a pre-filled payment screen in a bank application.
type Deeplink struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	Link string `json:"link"`
}

// Invoice is the provider-side payment request attached to an order.
// Only InvoiceID is mandatory; QR and deeplink data may be absent.
type Invoice struct {
	OrderID    int64
	InvoiceID  string
	PaymentRef string
	QRImage    string
	QRText     string
	Deeplinks  []Deeplink
	CreatedAt  time.Time
}
