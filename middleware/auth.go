package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"gorm.io/gorm"
)

// Role tiers used by the route groups.
var (
	AdminOnly   = []models.Role{models.RoleAdmin}
	ManagerTier = []models.Role{models.RoleAdmin, models.RoleManager}
	WaiterTier  = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleWaiter}
	CashierTier = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleCashier}
)

// Authenticate validates the bearer token (or ?token= for websocket upgrades)
// and loads the active user it names.
func Authenticate(db *gorm.DB, issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Error(apperror.Unauthorized("Access token required"))
			c.Abort()
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.Error(apperror.Unauthorized("Token is invalid or expired"))
			c.Abort()
			return
		}

		var user models.User
		err = db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
			c.Error(apperror.Unauthorized("User not found or inactive"))
			c.Abort()
			return
		}
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		auth.SetUser(c, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Error(apperror.Unauthorized("Authentication required"))
			c.Abort()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.Error(apperror.Forbidden("You do not have permission to access this resource"))
		c.Abort()
	}
}
