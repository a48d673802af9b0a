package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
)

// Order takers: the waiter tier plus cashiers at the counter.
var orderTakers = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleWaiter, models.RoleCashier}

func SetupOrderRoutes(api *gin.RouterGroup, d Deps) {
	orders := api.Group("/orders")
	{
		orders.GET("", d.Orders.ListOrdersHandler())
		orders.GET("/kitchen/active", d.Orders.KitchenQueueHandler())
		orders.GET("/:id", d.Orders.GetOrderHandler())

		orders.POST("", middleware.RequireRole(orderTakers...), d.Orders.CreateOrderHandler())

		// Kitchen staff move orders through preparation
		orders.PUT("/:id", d.Orders.UpdateOrderHandler())

		orders.DELETE("/:id", middleware.RequireRole(orderTakers...), d.Orders.CancelOrderHandler())
	}
}

func SetupPaymentRoutes(api *gin.RouterGroup, d Deps) {
	payments := api.Group("/payments")
	{
		payments.GET("", d.Payments.ListPaymentsHandler())
		payments.GET("/summary", middleware.RequireRole(middleware.ManagerTier...), d.Payments.SummaryHandler())
		payments.GET("/order/:orderId", d.Payments.OrderPaymentsHandler())
		payments.GET("/:id", d.Payments.GetPaymentHandler())

		cashier := payments.Group("", middleware.RequireRole(middleware.CashierTier...))
		cashier.POST("", d.Payments.RecordPaymentHandler())
		cashier.POST("/telr/session", d.Payments.TelrSessionHandler())

		payments.POST("/:id/refund", middleware.RequireRole(middleware.ManagerTier...), d.Payments.RefundHandler())
	}
}
