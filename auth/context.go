package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
)

const userKey = "user"

// SetUser stores the authenticated user on the request context.
func SetUser(c *gin.Context, user models.User) {
	c.Set(userKey, user)
	c.Set("user_id", user.ID)
}

// CurrentUser returns the user stored by the Authenticate middleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
