package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrMenuItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrOrderLocked),
		errors.Is(err, models.ErrItemUnavailable),
		errors.Is(err, services.ErrOrderCancelled),
		errors.Is(err, services.ErrTicketExists),
		errors.Is(err, services.ErrKitchenRegression),
		errors.Is(err, services.ErrDuplicateMenuItem),
		errors.Is(err, services.ErrNoCurrentOrder):
		return http.StatusConflict
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidTable),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrEmptySplit):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrBroadcastFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	utils.RespondError(c, code, err)
}

// intParam reads a numeric path parameter and answers 400 when it is not one.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return v, true
}
