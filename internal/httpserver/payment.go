package httpserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

func (h *handlers) createPaymentIntent(c *gin.Context) {
	cart, ok := h.currentCart(c)
	if !ok {
		return
	}
	intent, err := h.deps.PaymentSvc.PrepareIntent(c.Request.Context(), cart)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// paymentWebhook needs the raw body bytes for signature verification.
func (h *handlers) paymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "payload too large"})
		return
	}
	if err := h.deps.PaymentSvc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
