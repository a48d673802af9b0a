package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
)

func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	users := api.Group("/users", middleware.RequireRole(middleware.AdminOnly...))
	{
		users.GET("", d.Users.ListUsersHandler())
		users.GET("/:id", d.Users.GetUserHandler())
		users.POST("", d.Users.CreateUserHandler())
		users.PUT("/:id", d.Users.UpdateUserHandler())
		users.PATCH("/:id/status", d.Users.SetStatusHandler())
		users.DELETE("/:id", d.Users.DeleteUserHandler())
	}
}
