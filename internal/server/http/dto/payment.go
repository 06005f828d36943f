package dto

// PaymentConfirmRequest is the body of webhook and poll calls.
type PaymentConfirmRequest struct {
	InvoiceID string `json:"invoice_id"`
}

// PaymentStatusResponse reports the reconciliation outcome.
type PaymentStatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the structured error body for webhook/poll failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
