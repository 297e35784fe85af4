package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listInvoices(c *gin.Context) {
	invoices, err := h.deps.InvoiceSvc.ListForAccount(c.Request.Context(), *accountFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]invoiceSummaryResponse, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		out = append(out, invoiceSummaryResponse{
			Number:   inv.Number,
			IssuedOn: inv.IssuedOn.Format(time.DateOnly),
			Status:   string(inv.Status),
			Total:    money(h.deps.InvoiceSvc.Billing(inv).Total),
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *handlers) getInvoice(c *gin.Context) {
	inv, err := h.deps.InvoiceSvc.GetForAccount(c.Request.Context(), c.Param("number"), *accountFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv, h.deps.InvoiceSvc.Billing(inv)))
}
