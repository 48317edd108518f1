package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type MenuController struct {
	POS *services.POSService
}

func NewMenuController(pos *services.POSService) *MenuController {
	return &MenuController{POS: pos}
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of menus", mc.POS.GetMenu())
}

func (mc *MenuController) GetMenuByCategory(c *gin.Context) {
	category, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", mc.POS.GetMenuByCategory(category))
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := intParam(c, "menu_id")
	if !ok {
		return
	}
	item, found := mc.POS.GetMenuItem(id)
	if !found {
		utils.RespondError(c, http.StatusNotFound, services.ErrMenuItemNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req struct {
		ID          int     `json:"id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price"`
		Category    string  `json:"category" binding:"required"`
		Available   *bool   `json:"available"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		Category:    models.Category(req.Category),
		Available:   req.Available == nil || *req.Available,
		Description: req.Description,
	}
	if err := mc.POS.AddMenuItem(item); err != nil {
		if errors.Is(err, services.ErrDuplicateMenuItem) {
			respondServiceError(c, err)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	created, _ := mc.POS.GetMenuItem(item.ID)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", created)
}

// UpdateMenu changes price and/or availability.
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := intParam(c, "menu_id")
	if !ok {
		return
	}
	var req struct {
		Price     *float64 `json:"price"`
		Available *bool    `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price == nil && req.Available == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update"))
		return
	}

	if req.Price != nil {
		if err := mc.POS.UpdateMenuItemPrice(id, *req.Price); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	if req.Available != nil {
		if err := mc.POS.SetMenuItemAvailability(id, *req.Available); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	item, _ := mc.POS.GetMenuItem(id)
	utils.RespondJSON(c, http.StatusOK, "Menu updated", item)
}
