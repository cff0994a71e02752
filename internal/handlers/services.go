package handlers

import (
	"net/http"
	"strings"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

type serviceRequest struct {
	ServiceName string `json:"service_name"`
	Port        int    `json:"port"`
	Protocol    string `json:"protocol"`
	Version     string `json:"version"`
}

func ListAssetServices(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user)
	if !ok {
		return
	}

	var services []models.Service
	database.DB.Where("asset_id = ?", asset.ID).Order("port asc").Find(&services)
	c.JSON(http.StatusOK, services)
}

func CreateAssetService(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user)
	if !ok {
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ServiceName = strings.TrimSpace(req.ServiceName)
	if req.ServiceName == "" {
		respondError(c, http.StatusBadRequest, "service_name is required")
		return
	}
	if req.Port < 0 || req.Port > 65535 {
		respondError(c, http.StatusBadRequest, "port must be between 0 and 65535")
		return
	}

	svc := models.Service{
		AssetID:     asset.ID,
		ServiceName: req.ServiceName,
		Port:        req.Port,
		Protocol:    strings.ToUpper(strings.TrimSpace(req.Protocol)),
		Version:     strings.TrimSpace(req.Version),
	}
	if svc.Protocol == "" {
		svc.Protocol = "TCP"
	}

	if err := database.DB.Create(&svc).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save service")
		return
	}

	database.CreateAuditLog(user.ID, "service", svc.ID, "create", "Added service "+svc.ServiceName+" to asset: "+asset.Name)
	c.JSON(http.StatusCreated, svc)
}

func DeleteService(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var svc models.Service
	if err := database.DB.First(&svc, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "service not found")
		return
	}

	// доступ к сервису определяется командой его актива
	var asset models.Asset
	if err := database.DB.First(&asset, svc.AssetID).Error; err != nil {
		respondError(c, http.StatusNotFound, "asset not found")
		return
	}
	if !user.CanAccessTeam(asset.TeamID) {
		respondError(c, http.StatusForbidden, "access to this asset is denied")
		return
	}

	if err := database.DB.Delete(&svc).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete service")
		return
	}

	database.CreateAuditLog(user.ID, "service", svc.ID, "delete", "Removed service "+svc.ServiceName+" from asset: "+asset.Name)
	c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
}
