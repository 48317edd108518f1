package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var errBadItemIndex = errors.New("no editable item at that index")

type OrderController struct {
	POS *services.POSService
}

func NewOrderController(pos *services.POSService) *OrderController {
	return &OrderController{POS: pos}
}

// CreateOrder starts a new order and makes it the terminal's current order.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableIdentifier string `json:"table_identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.POS.StartNewOrder(req.TableIdentifier)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders lists active orders. Filters: ?status=, ?table=, ?type=,
// ?scope=completed for finished orders.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.OrderSnapshot
	switch {
	case c.Query("scope") == "completed":
		orders = oc.POS.GetCompletedOrders()
	case c.Query("status") != "":
		status, err := models.ParseOrderStatus(c.Query("status"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		orders = oc.POS.GetOrdersByStatus(status)
	case c.Query("table") != "":
		orders = oc.POS.GetOrdersByTable(c.Query("table"))
	case c.Query("type") != "":
		orders = oc.POS.GetOrdersByType(models.OrderType(c.Query("type")))
	default:
		orders = oc.POS.GetActiveOrders()
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	order, found := oc.POS.GetOrder(id)
	if !found {
		utils.RespondError(c, http.StatusNotFound, services.ErrOrderNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) GetCurrentOrder(c *gin.Context) {
	order, ok := oc.POS.CurrentOrder()
	if !ok {
		utils.RespondError(c, http.StatusNotFound, services.ErrNoCurrentOrder)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current order", order)
}

func (oc *OrderController) SelectOrder(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.POS.SelectOrder(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order selected", order)
}

func (oc *OrderController) AddCurrentItem(c *gin.Context) {
	var req struct {
		MenuID              int    `json:"menu_id" binding:"required"`
		Quantity            int    `json:"quantity"`
		SpecialInstructions string `json:"special_instructions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	order, err := oc.POS.AddItemToCurrentOrder(req.MenuID, req.Quantity, req.SpecialInstructions)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added", order)
}

func (oc *OrderController) RemoveCurrentItem(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	order, removed := oc.POS.RemoveItemFromCurrentOrder(index)
	if !removed {
		utils.RespondError(c, http.StatusNotFound, errBadItemIndex)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", order)
}

func (oc *OrderController) UpdateCurrentItem(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, updated := oc.POS.UpdateCurrentOrderItemQuantity(index, req.Quantity)
	if !updated {
		utils.RespondError(c, http.StatusNotFound, errBadItemIndex)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", order)
}

func (oc *OrderController) ClearCurrentOrder(c *gin.Context) {
	oc.POS.ClearCurrentOrder()
	utils.RespondJSON(c, http.StatusOK, "Current order cleared", nil)
}

func (oc *OrderController) SendCurrentOrder(c *gin.Context) {
	ticket, err := oc.POS.SendCurrentOrderToKitchen()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order sent to kitchen", ticket)
}

func (oc *OrderController) SendOrder(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	ticket, err := oc.POS.SendOrderToKitchen(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order sent to kitchen", ticket)
}

func (oc *OrderController) CompleteOrder(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	if err := oc.POS.CompleteOrder(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Infof("Order %d marked served by %s", id, c.GetString("staff_name"))
	order, _ := oc.POS.GetOrder(id)
	utils.RespondJSON(c, http.StatusOK, "Order completed", order)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	if err := oc.POS.CancelOrder(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Infof("Order %d cancelled by %s", id, c.GetString("staff_name"))
	order, _ := oc.POS.GetOrder(id)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

func (oc *OrderController) GetOrderBalance(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	balance, err := oc.POS.GetOrderBalance(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order balance", balance)
}
