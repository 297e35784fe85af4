package httpserver

import (
	"net/http"

	"vatshop/internal/domain"
	cartsvc "vatshop/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type setItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Replace   *bool  `json:"replace"`
}

// currentCart resolves the cart bound to the request's session and account.
func (h *handlers) currentCart(c *gin.Context) (*domain.Cart, bool) {
	cart, err := h.deps.CartSvc.Resolve(c.Request.Context(), sessionFrom(c), accountFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	return cart, true
}

func (h *handlers) cartResponse(cart *domain.Cart) cartResponse {
	return cartResponse{
		ID:              cart.ID,
		ItemCount:       h.deps.CartSvc.ItemCount(cart),
		Contact:         cart.Contact,
		Address:         cart.Address,
		billingResponse: toBillingResponse(h.deps.CartSvc.Billing(cart)),
	}
}

func (h *handlers) getCart(c *gin.Context) {
	cart, ok := h.currentCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.cartResponse(cart))
}

func (h *handlers) setCartItem(c *gin.Context) {
	var req setItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(c, h.logger, domain.NewValidationError("productId", "required"))
		return
	}
	quantity, replace := 1, true
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if req.Replace != nil {
		replace = *req.Replace
	}

	cart, ok := h.currentCart(c)
	if !ok {
		return
	}
	if _, err := h.deps.CartSvc.SetQuantity(c.Request.Context(), cart, req.ProductID, quantity, replace); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse(cart))
}

func (h *handlers) updateCheckout(c *gin.Context) {
	var req cartsvc.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cart, ok := h.currentCart(c)
	if !ok {
		return
	}
	updated, err := h.deps.CartSvc.UpdateCheckout(c.Request.Context(), cart, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse(updated))
}
