package model

// PaymentStatus is the reconciliation outcome reported to webhook and poll callers.
// Unpaid is not terminal, it only means the provider has no matching payment yet.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)
