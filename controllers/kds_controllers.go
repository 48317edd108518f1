package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// channelRoles lists which staff roles may open each websocket channel.
var channelRoles = map[string][]string{
	kds.RoleKitchen: {models.RoleKitchen, models.RoleManager},
	kds.RolePOS:     {models.RoleCashier, models.RoleManager},
}

type KitchenController struct {
	POS *services.POSService
	Hub *kds.Hub
}

func NewKitchenController(pos *services.POSService, hub *kds.Hub) *KitchenController {
	return &KitchenController{POS: pos, Hub: hub}
}

func (kc *KitchenController) GetQueue(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", kc.POS.GetKitchenQueueStatus())
}

func (kc *KitchenController) GetWaitTime(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Estimated wait time", gin.H{
		"estimated_wait_time": kc.POS.GetEstimatedWaitTime(),
		"is_busy":             kc.POS.IsKitchenBusy(),
	})
}

func (kc *KitchenController) GetTicket(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	ticket, found := kc.POS.GetKitchenTicket(id)
	if !found {
		utils.RespondError(c, http.StatusNotFound, services.ErrTicketNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen ticket", ticket)
}

// UpdateTicketStatus accepts {"status": "PREP_STARTED"} or the numeric code.
func (kc *KitchenController) UpdateTicketStatus(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	status, err := models.ParseKitchenStatus(req.Status)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := kc.POS.UpdateKitchenStatus(id, status); err != nil {
		respondServiceError(c, err)
		return
	}
	order, _ := kc.POS.GetOrder(id)
	utils.RespondJSON(c, http.StatusOK, "Kitchen status updated", gin.H{
		"order_id":       id,
		"kitchen_status": status.String(),
		"order":          order,
	})
}

func (kc *KitchenController) RemoveTicket(c *gin.Context) {
	id, ok := intParam(c, "order_id")
	if !ok {
		return
	}
	if !kc.POS.RemoveKitchenTicket(id) {
		utils.RespondError(c, http.StatusNotFound, services.ErrTicketNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen ticket removed", nil)
}

// KDSHandler upgrades to a websocket on /ws/:role once the token's role is
// allowed on that channel.
func (kc *KitchenController) KDSHandler(c *gin.Context) {
	channel := c.Param("role")
	allowed, known := channelRoles[channel]
	if !known {
		utils.RespondError(c, http.StatusNotFound, errors.New("unknown channel"))
		return
	}
	role := c.GetString("role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !contains(allowed, role) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}
	kc.Hub.Serve(ws, channel)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
