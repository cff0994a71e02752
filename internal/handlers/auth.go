package handlers

import (
	"net/http"
	"strings"

	"ivm-inventory/internal/auth"
	"ivm-inventory/internal/database"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login проверяет учётные данные и выдаёт bearer-токен.
func Login(mgr *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			respondError(c, http.StatusBadRequest, "username and password are required")
			return
		}

		var user models.User
		if err := database.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
			respondError(c, http.StatusUnauthorized, "incorrect username or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondError(c, http.StatusUnauthorized, "incorrect username or password")
			return
		}

		if !user.IsActive {
			respondError(c, http.StatusForbidden, "user account is disabled")
			return
		}

		token, err := mgr.Issue(user.ID, user.Username, user.IsAdmin)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to issue token")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}
