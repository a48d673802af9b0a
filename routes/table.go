package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
)

func SetupTableRoutes(api *gin.RouterGroup, d Deps) {
	tables := api.Group("/tables")
	{
		tables.GET("", d.Tables.ListTablesHandler())
		tables.GET("/status/summary", d.Tables.StatusSummaryHandler())
		tables.GET("/:id", d.Tables.GetTableHandler())

		manager := tables.Group("", middleware.RequireRole(middleware.ManagerTier...))
		manager.POST("", d.Tables.CreateTableHandler())
		manager.DELETE("/:id", d.Tables.DeleteTableHandler())
		manager.POST("/:id/assign", d.Tables.AssignHandler())
		manager.POST("/:id/unassign", d.Tables.UnassignHandler())

		tables.PUT("/:id", middleware.RequireRole(middleware.WaiterTier...), d.Tables.UpdateTableHandler())
	}
}
