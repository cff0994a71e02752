package middleware

import (
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

// CurrentUser достаёт пользователя, сохранённого RequireAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get("CurrentUser")
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
