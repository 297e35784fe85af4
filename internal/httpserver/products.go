package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": toProductResponses(products)})
}

func (h *handlers) getProduct(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.deps.ProductSvc.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	related, err := h.deps.ProductSvc.Related(ctx, p.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, productDetailResponse{
		productResponse: toProductResponse(*p),
		Related:         toProductResponses(related),
	})
}
