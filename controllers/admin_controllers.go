package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const defaultArchiveLimit = 50

var errArchiveDisabled = errors.New("archive database is not configured")

type AdminController struct {
	POS     *services.POSService
	Archive *database.Archive
}

func NewAdminController(pos *services.POSService, archive *database.Archive) *AdminController {
	return &AdminController{POS: pos, Archive: archive}
}

func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Business stats", ac.POS.GetBusinessStats())
}

// GetArchivedOrders reads finished orders back from the archive, newest first.
func (ac *AdminController) GetArchivedOrders(c *gin.Context) {
	if ac.Archive == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errArchiveDisabled)
		return
	}
	var q struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if q.Limit <= 0 {
		q.Limit = defaultArchiveLimit
	}

	orders, err := ac.Archive.RecentOrders(q.Limit)
	if err != nil {
		utils.ErrorLogger.Errorf("Reading archived orders: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Archived orders", orders)
}

func (ac *AdminController) GetArchivedTransactions(c *gin.Context) {
	if ac.Archive == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errArchiveDisabled)
		return
	}
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}

	records, err := ac.Archive.TransactionsForOrder(id)
	if err != nil {
		utils.ErrorLogger.Errorf("Reading archived transactions: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Archived transactions", records)
}
