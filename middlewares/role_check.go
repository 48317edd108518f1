package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// RoleCheck lets managers and the listed roles through.
func RoleCheck(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if !RoleAllowed(userRole.(string), roles...) {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%v access required", roles))
			c.Abort()
			return
		}
		c.Next()
	}
}

func RoleAllowed(role string, allowed ...string) bool {
	if role == models.RoleManager {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
