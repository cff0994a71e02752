package handlers

import (
	"net/http"

	"ivm-inventory/internal/database"

	"github.com/gin-gonic/gin"
)

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Asset Inventory API",
		"version": "1.0.0",
	})
}

// Health — живость процесса и соединения с БД.
func Health(c *gin.Context) {
	sqlDB, err := database.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
