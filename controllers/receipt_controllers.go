package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ReceiptController struct {
	POS *services.POSService
}

func NewReceiptController(pos *services.POSService) *ReceiptController {
	return &ReceiptController{POS: pos}
}

// GetReceipt builds the receipt from the order and its successful payments.
// ?format=text returns a printable slip instead of JSON.
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	receipt, err := rc.POS.GetReceipt(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, receiptText(receipt))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt", receipt)
}

func receiptText(r models.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt %s\n", r.ReceiptNumber)
	fmt.Fprintf(&b, "Order %d  %s\n", r.OrderID, r.TableIdentifier)
	fmt.Fprintf(&b, "%s\n", r.CreatedAt.Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, item := range r.ReceiptItems {
		fmt.Fprintf(&b, "%2dx %-24s %10s\n", item.Quantity, item.MenuName, utils.FormatCurrency(item.Subtotal))
		if item.Notes != "" {
			fmt.Fprintf(&b, "    (%s)\n", item.Notes)
		}
	}
	b.WriteString(strings.Repeat("-", 40) + "\n")
	line := func(label string, amount float64) {
		fmt.Fprintf(&b, "%-28s %11s\n", label, utils.FormatCurrency(amount))
	}
	line("Subtotal", r.Subtotal)
	line("Tax", r.Tax)
	line("Total", r.Total)
	for _, p := range r.Payments {
		line(fmt.Sprintf("%s %s", p.PaymentMethod, p.PaymentReference), p.Amount)
	}
	if r.Tips > 0 {
		line("Tips", r.Tips)
	}
	if r.Change > 0 {
		line("Change", r.Change)
	}
	if r.Remaining > 0 {
		line("Remaining", r.Remaining)
	}
	fmt.Fprintf(&b, "Status: %s\n", r.PaymentStatus)
	return b.String()
}
