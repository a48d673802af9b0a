package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
)

func SetupMenuRoutes(api *gin.RouterGroup, d Deps) {
	menu := api.Group("/menu")
	manager := middleware.RequireRole(middleware.ManagerTier...)
	{
		menu.GET("/categories", d.Menu.ListCategoriesHandler())
		menu.POST("/categories", manager, d.Menu.CreateCategoryHandler())
		menu.PUT("/categories/:id", manager, d.Menu.UpdateCategoryHandler())
		menu.DELETE("/categories/:id", manager, d.Menu.DeleteCategoryHandler())

		menu.GET("/items", d.Menu.ListItemsHandler())
		menu.GET("/items/export", manager, d.Menu.ExportItemsHandler())
		menu.GET("/items/:id", d.Menu.GetItemHandler())
		menu.POST("/items", manager, d.Menu.CreateItemHandler())
		menu.POST("/items/import", manager, d.Menu.ImportItemsHandler())
		menu.PUT("/items/:id", manager, d.Menu.UpdateItemHandler())
		menu.DELETE("/items/:id", manager, d.Menu.DeleteItemHandler())

		menu.GET("/modifiers", d.Menu.ListModifiersHandler())
		menu.POST("/modifiers", manager, d.Menu.CreateModifierHandler())
	}
}

func SetupInventoryRoutes(api *gin.RouterGroup, d Deps) {
	inv := api.Group("/inventory")
	manager := middleware.RequireRole(middleware.ManagerTier...)
	{
		inv.GET("/ingredients", d.Inventory.ListIngredientsHandler())
		inv.GET("/ingredients/:id", d.Inventory.GetIngredientHandler())
		inv.POST("/ingredients", manager, d.Inventory.CreateIngredientHandler())
		inv.PUT("/ingredients/:id", manager, d.Inventory.UpdateIngredientHandler())
		inv.DELETE("/ingredients/:id", manager, d.Inventory.DeleteIngredientHandler())
		inv.POST("/ingredients/:id/adjust-stock", manager, d.Inventory.AdjustStockHandler())

		inv.GET("/low-stock", d.Inventory.LowStockHandler())

		inv.POST("/menu-items/:id/ingredients", manager, d.Inventory.AddUsageHandler())
		inv.DELETE("/menu-items/:id/ingredients/:ingredientId", manager, d.Inventory.RemoveUsageHandler())
	}
}
