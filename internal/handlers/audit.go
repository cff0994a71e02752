package handlers

import (
	"net/http"
	"strconv"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if err != nil || limit <= 0 {
		respondError(c, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit > 1000 {
		limit = 1000
	}

	q := database.DB.Preload("User").Order("created_at desc").Limit(limit)

	// опциональные фильтры по сущности и действию
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}

	var logs []models.AuditLog
	q.Find(&logs)
	c.JSON(http.StatusOK, logs)
}
