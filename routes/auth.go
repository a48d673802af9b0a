package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
)

// SetupAuthRoutes registers all "/api/auth/*" endpoints.
func SetupAuthRoutes(api *gin.RouterGroup, d Deps, authenticate gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", auth.LoginHandler(d.DB, d.Issuer, d.Logger))
		authGroup.POST("/logout", authenticate, auth.LogoutHandler())
		authGroup.GET("/me", authenticate, auth.MeHandler())
	}
}
