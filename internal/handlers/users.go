package handlers

import (
	"net/http"
	"strings"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
	TeamID   *uint  `json:"team_id"`
}

func CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if len(req.Username) < 3 || len(req.Password) < 6 {
		respondError(c, http.StatusBadRequest, "username or password is too short")
		return
	}
	if req.Email == "" {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	// --- ПРОВЕРКА УНИКАЛЬНОСТИ ЛОГИНА ---
	var count int64
	database.DB.Model(&models.User{}).
		Where("username = ?", req.Username).
		Count(&count)
	if count > 0 {
		respondError(c, http.StatusBadRequest, "username already registered")
		return
	}

	// --- ПРОВЕРКА УНИКАЛЬНОСТИ EMAIL ---
	database.DB.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", req.Email).
		Count(&count)
	if count > 0 {
		respondError(c, http.StatusBadRequest, "email already registered")
		return
	}

	if req.TeamID != nil {
		var team models.Team
		if err := database.DB.First(&team, *req.TeamID).Error; err != nil {
			respondError(c, http.StatusBadRequest, "team not found")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		IsActive:     true,
		IsAdmin:      req.IsAdmin,
		TeamID:       req.TeamID,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save user")
		return
	}

	if actor, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(actor.ID, "user", user.ID, "create", "Created user: "+user.Username)
	}

	c.JSON(http.StatusCreated, user)
}

func ListUsers(c *gin.Context) {
	var users []models.User
	database.DB.Preload("Team").Order("username asc").Find(&users)
	c.JSON(http.StatusOK, users)
}

// Me возвращает профиль владельца токена.
func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	if user.TeamID != nil {
		database.DB.Preload("Team").First(&user, user.ID)
	}
	c.JSON(http.StatusOK, user)
}
