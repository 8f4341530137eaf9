package handlers

import (
	"net/http"

	"food-ordering-api/payment"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	gateway    payment.Gateway
	svc        *services.OrderService
	production bool
}

func NewPaymentHandler(gateway payment.Gateway, svc *services.OrderService, production bool) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, svc: svc, production: production}
}

// Webhook receives payment processor callbacks
func (h *PaymentHandler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	ev, err := h.gateway.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		badRequest(c, "Invalid payment event", err)
		return
	}

	handled, err := h.svc.HandlePaymentEvent(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err, h.production)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "handled": handled})
}
