package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func ReceiptLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		utils.InfoLogger.Debugf("Generating receipt for order %s", orderID)

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Infof("Receipt generated for order %s", orderID)
		} else {
			utils.ErrorLogger.Warnf("Failed to generate receipt for order %s (status %d)", orderID, c.Writer.Status())
		}
	}
}
