package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
)

func SetupReportRoutes(api *gin.RouterGroup, d Deps) {
	reports := api.Group("/reports")
	{
		reports.GET("/dashboard", d.Reports.DashboardHandler())

		manager := reports.Group("", middleware.RequireRole(middleware.ManagerTier...))
		manager.GET("/sales", d.Reports.SalesHandler())
		manager.GET("/sales/export", d.Reports.ExportSalesHandler())
		manager.GET("/staff-performance", d.Reports.StaffPerformanceHandler())
		manager.GET("/inventory", d.Reports.InventoryHandler())
	}
}
