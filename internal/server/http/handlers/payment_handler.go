package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/server/http/dto"
)

// PaymentHandler serves the two confirmation triggers: the provider webhook
// and the payment-page poll. Both run the same reconciliation and may fire
// concurrently for the same invoice.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Webhook handles POST /api/qpay/webhook.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	h.confirm(c)
}

// Check handles POST /api/qpay/check, invoked by the payment page timer.
func (h *PaymentHandler) Check(c *gin.Context) {
	h.confirm(c)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	var req dto.PaymentConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.InvoiceID) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing invoice_id"})
		return
	}

	status, err := h.facade.ConfirmPayment(c.Request.Context(), req.InvoiceID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "payment check failed"})
		return
	}

	c.JSON(http.StatusOK, dto.PaymentStatusResponse{Status: string(status)})
}
