package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type PaymentController struct {
	POS     *services.POSService
	Monitor *services.PaymentMonitor
}

func NewPaymentController(pos *services.POSService, monitor *services.PaymentMonitor) *PaymentController {
	return &PaymentController{POS: pos, Monitor: monitor}
}

// CreatePayment charges one payment against an order. A declined card is a
// 402 with the result in data so the terminal can show the reason.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var req struct {
		OrderID int     `json:"order_id" binding:"required"`
		Method  string  `json:"method" binding:"required"`
		Amount  float64 `json:"amount"`
		Tip     float64 `json:"tip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.POS.ProcessPayment(req.OrderID, models.ParsePaymentMethod(req.Method), req.Amount, req.Tip)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !result.Success {
		utils.RespondJSON(c, http.StatusPaymentRequired, result.ErrorMessage, result)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment processed", result)
}

// CreateSplitPayment runs every entry independently and returns all results
// with the balance left afterwards.
func (pc *PaymentController) CreateSplitPayment(c *gin.Context) {
	var req struct {
		OrderID  int `json:"order_id" binding:"required"`
		Payments []struct {
			Method string  `json:"method" binding:"required"`
			Amount float64 `json:"amount"`
		} `json:"payments" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entries := make([]services.SplitEntry, 0, len(req.Payments))
	for _, p := range req.Payments {
		entries = append(entries, services.SplitEntry{
			Method: models.ParsePaymentMethod(p.Method),
			Amount: p.Amount,
		})
	}
	results, err := pc.POS.ProcessSplitPayment(req.OrderID, entries)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	balance, err := pc.POS.GetOrderBalance(req.OrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Split payment processed", gin.H{
		"results": results,
		"balance": balance,
	})
}

func (pc *PaymentController) Refund(c *gin.Context) {
	var req struct {
		TransactionID string  `json:"transaction_id" binding:"required"`
		Amount        float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := pc.POS.ProcessRefund(req.TransactionID, req.Amount)
	if !result.Success {
		utils.RespondJSON(c, http.StatusNotImplemented, result.ErrorMessage, result)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Refund processed", result)
}

// GetPayments returns the ledger, or one order's entries with ?order_id=.
func (pc *PaymentController) GetPayments(c *gin.Context) {
	if c.Query("order_id") == "" {
		utils.RespondJSON(c, http.StatusOK, "Transaction history", pc.POS.GetTransactionHistory())
		return
	}
	var q struct {
		OrderID int `form:"order_id"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction history", pc.POS.GetTransactionsForOrder(q.OrderID))
}

func (pc *PaymentController) GetMetrics(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Payment metrics", pc.Monitor.GetMetrics())
}
