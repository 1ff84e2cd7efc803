package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"contesthub/internal/service"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
	log            *logrus.Entry
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService, log *logrus.Entry) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, log: log}
}

// PaymentIntentRequest represents a payment intent request.
type PaymentIntentRequest struct {
	Price decimal.Decimal `json:"price" swaggertype:"string"`
}

// CreatePaymentIntent godoc
// @Summary Create a payment intent
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentIntentRequest true "Price in major units"
// @Success 200 {object} service.PaymentIntent
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /create-payment-intent [post]
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req PaymentIntentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	intent, err := h.paymentService.CreateIntent(c.Request().Context(), who, req.Price)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, intent)
}
