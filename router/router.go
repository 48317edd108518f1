package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
)

// Dependencies is everything the HTTP layer talks to. Archive may be nil.
type Dependencies struct {
	POS            *services.POSService
	Hub            *kds.Hub
	PaymentMonitor *services.PaymentMonitor
	Archive        *database.Archive
	Staff          []models.Staff

	CORSOrigin         string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	staffCtrl := controllers.NewStaffController(deps.Staff)
	menuCtrl := controllers.NewMenuController(deps.POS)
	orderCtrl := controllers.NewOrderController(deps.POS)
	paymentCtrl := controllers.NewPaymentController(deps.POS, deps.PaymentMonitor)
	receiptCtrl := controllers.NewReceiptController(deps.POS)
	kitchenCtrl := controllers.NewKitchenController(deps.POS, deps.Hub)
	adminCtrl := controllers.NewAdminController(deps.POS, deps.Archive)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), staffCtrl.Login)

	// ----------------------------------------------------------------
	//                      TERMINAL ROUTES
	// ----------------------------------------------------------------
	r.GET("/menu", menuCtrl.GetAllMenus)
	r.GET("/menu/category/:category", menuCtrl.GetMenuByCategory)
	r.GET("/menu/:menu_id", menuCtrl.GetMenuByID)

	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders", orderCtrl.GetAllOrders)
	r.GET("/orders/current", orderCtrl.GetCurrentOrder)
	r.DELETE("/orders/current", orderCtrl.ClearCurrentOrder)
	r.POST("/orders/current/items", orderCtrl.AddCurrentItem)
	r.PATCH("/orders/current/items/:index", orderCtrl.UpdateCurrentItem)
	r.DELETE("/orders/current/items/:index", orderCtrl.RemoveCurrentItem)
	r.POST("/orders/current/send", orderCtrl.SendCurrentOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/select", orderCtrl.SelectOrder)
	r.POST("/orders/:order_id/send", orderCtrl.SendOrder)
	r.POST("/orders/:order_id/complete", orderCtrl.CompleteOrder)
	r.GET("/orders/:order_id/balance", orderCtrl.GetOrderBalance)
	r.GET("/orders/:order_id/receipt", middlewares.ReceiptLoggerMiddleware(), receiptCtrl.GetReceipt)

	payments := r.Group("/payments")
	payments.Use(
		middlewares.NewRateLimiter(deps.RateLimitPerSecond, deps.RateLimitBurst).RateLimit(),
		middlewares.PaymentSecurityHeaders(),
		middlewares.LogPaymentRequest(),
	)
	{
		payments.POST("", paymentCtrl.CreatePayment)
		payments.POST("/split", paymentCtrl.CreateSplitPayment)
	}

	r.GET("/kitchen/queue", kitchenCtrl.GetQueue)
	r.GET("/kitchen/wait-time", kitchenCtrl.GetWaitTime)
	r.GET("/kitchen/tickets/:order_id", kitchenCtrl.GetTicket)
	r.PATCH("/kitchen/tickets/:order_id", kitchenCtrl.UpdateTicketStatus)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", staffCtrl.GetProfile)

	manager := auth.Group("")
	manager.Use(middlewares.RoleCheck(models.RoleManager))
	{
		manager.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
		manager.POST("/menu", menuCtrl.CreateMenu)
		manager.PATCH("/menu/:menu_id", menuCtrl.UpdateMenu)
		manager.GET("/payments", paymentCtrl.GetPayments)
		manager.GET("/payments/metrics", paymentCtrl.GetMetrics)
		manager.GET("/stats", adminCtrl.GetDashboardStats)
		manager.GET("/archive/orders", adminCtrl.GetArchivedOrders)
		manager.GET("/archive/orders/:order_id/transactions", adminCtrl.GetArchivedTransactions)
	}

	refunds := manager.Group("/payments")
	refunds.Use(middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	refunds.POST("/refund", paymentCtrl.Refund)

	kitchen := auth.Group("/kitchen")
	kitchen.Use(middlewares.RoleCheck(models.RoleKitchen))
	kitchen.DELETE("/tickets/:order_id", kitchenCtrl.RemoveTicket)

	// Websocket clients authenticate with ?token=
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", kitchenCtrl.KDSHandler)
	}

	return r
}
