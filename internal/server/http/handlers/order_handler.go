package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ganzorig/qpaygate/internal/adapter/qpay"
	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
	"github.com/ganzorig/qpaygate/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	merchantID := CurrentMerchantID(c)

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, created, err := h.facade.CreateOrder(c.Request.Context(), model.OrderDraft{
		MerchantID:    merchantID,
		Number:        req.Number,
		Amount:        req.Amount,
		ReceiverEmail: req.ReceiverEmail,
		Description:   req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidOrderNumber), errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	merchantID := CurrentMerchantID(c)
	orders, err := h.facade.Orders(c.Request.Context(), merchantID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:number.
func (h *OrderHandler) Get(c *gin.Context) {
	merchantID := CurrentMerchantID(c)
	order, err := h.facade.Order(c.Request.Context(), merchantID, c.Param("number"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// CreateInvoice handles POST /api/orders/:number/invoice.
func (h *OrderHandler) CreateInvoice(c *gin.Context) {
	merchantID := CurrentMerchantID(c)
	order, err := h.facade.CreateInvoice(c.Request.Context(), merchantID, c.Param("number"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrOrderNotPayable):
			c.Status(http.StatusConflict)
		case errors.Is(err, qpay.ErrAuthFailure),
			errors.Is(err, qpay.ErrRequestFailure),
			errors.Is(err, qpay.ErrInvoiceCreationFailed):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "invoice creation failed, please try again"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		Number:    order.Number,
		Status:    string(order.Status),
		Amount:    order.Amount,
		CreatedAt: order.CreatedAt,
		PaidAt:    order.PaidAt,
	}
	if order.Invoice != nil {
		urls := order.Invoice.Deeplinks
		if urls == nil {
			urls = []model.Deeplink{}
		}
		resp.Invoice = &dto.InvoicePayload{
			InvoiceID: order.Invoice.InvoiceID,
			QRImage:   order.Invoice.QRImage,
			QRText:    order.Invoice.QRText,
			URLs:      urls,
		}
	}
	return resp
}
