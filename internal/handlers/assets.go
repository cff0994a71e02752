package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

type assetRequest struct {
	Name                   string             `json:"name"`
	IPAddress              string             `json:"ip_address"`
	OSVersion              string             `json:"os_version"`
	PublicFacing           bool               `json:"public_facing"`
	TeamID                 uint               `json:"team_id"`
	OwnerID                *uint              `json:"owner_id"`
	Environment            models.Environment `json:"environment"`
	Criticality            models.Criticality `json:"criticality"`
	BusinessImpact         string             `json:"business_impact"`
	AssetType              string             `json:"asset_type"`
	Location               string             `json:"location"`
	ComplianceRequirements string             `json:"compliance_requirements"`
}

//
// СПИСОК / СОЗДАНИЕ
//

func ListAssets(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	q := database.DB.Preload("Team").Preload("Owner").Order("name asc")

	if user.IsAdmin {
		// админ может сузить выборку до конкретной команды
		if teamStr := c.Query("team_id"); teamStr != "" {
			teamID, err := strconv.Atoi(teamStr)
			if err != nil || teamID <= 0 {
				respondError(c, http.StatusBadRequest, "invalid team_id")
				return
			}
			q = q.Where("team_id = ?", teamID)
		}
	} else {
		if user.TeamID == nil {
			c.JSON(http.StatusOK, []models.Asset{})
			return
		}
		q = q.Where("team_id = ?", *user.TeamID)
	}

	var assets []models.Asset
	q.Find(&assets)
	c.JSON(http.StatusOK, assets)
}

func CreateAsset(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.IPAddress = strings.TrimSpace(req.IPAddress)
	if req.Name == "" || req.IPAddress == "" {
		respondError(c, http.StatusBadRequest, "name and ip_address are required")
		return
	}
	if req.TeamID == 0 {
		respondError(c, http.StatusBadRequest, "team_id is required")
		return
	}

	var team models.Team
	if err := database.DB.First(&team, req.TeamID).Error; err != nil {
		respondError(c, http.StatusBadRequest, "team not found")
		return
	}

	if !user.CanAccessTeam(req.TeamID) {
		respondError(c, http.StatusForbidden, "cannot create assets for another team")
		return
	}

	asset := models.Asset{
		Name:                   req.Name,
		IPAddress:              req.IPAddress,
		OSVersion:              strings.TrimSpace(req.OSVersion),
		PublicFacing:           req.PublicFacing,
		TeamID:                 req.TeamID,
		OwnerID:                req.OwnerID,
		Environment:            req.Environment,
		Criticality:            req.Criticality,
		BusinessImpact:         req.BusinessImpact,
		AssetType:              req.AssetType,
		Location:               req.Location,
		ComplianceRequirements: req.ComplianceRequirements,
	}
	if asset.Environment == "" {
		asset.Environment = models.EnvDev
	}
	if asset.Criticality == "" {
		asset.Criticality = models.CriticalityMedium
	}

	if err := database.DB.Create(&asset).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save asset")
		return
	}

	database.CreateAuditLog(user.ID, "asset", asset.ID, "create", "Created asset: "+asset.Name)
	c.JSON(http.StatusCreated, asset)
}

//
// ЧТЕНИЕ / ИЗМЕНЕНИЕ / УДАЛЕНИЕ
//

// loadAssetFor грузит актив и проверяет, что пользователю можно его видеть.
func loadAssetFor(c *gin.Context, user models.User, preloads ...string) (models.Asset, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Asset{}, false
	}

	q := database.DB
	for _, p := range preloads {
		q = q.Preload(p)
	}

	var asset models.Asset
	if err := q.First(&asset, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "asset not found")
		return models.Asset{}, false
	}

	if !user.CanAccessTeam(asset.TeamID) {
		respondError(c, http.StatusForbidden, "access to this asset is denied")
		return models.Asset{}, false
	}
	return asset, true
}

func GetAsset(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user, "Team", "Owner", "Services", "Vulnerabilities")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, asset)
}

func UpdateAsset(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user)
	if !ok {
		return
	}

	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.IPAddress = strings.TrimSpace(req.IPAddress)
	if req.Name == "" || req.IPAddress == "" {
		respondError(c, http.StatusBadRequest, "name and ip_address are required")
		return
	}

	// перенос в другую команду требует доступа к целевой команде
	if req.TeamID != 0 && req.TeamID != asset.TeamID {
		var team models.Team
		if err := database.DB.First(&team, req.TeamID).Error; err != nil {
			respondError(c, http.StatusBadRequest, "team not found")
			return
		}
		if !user.CanAccessTeam(req.TeamID) {
			respondError(c, http.StatusForbidden, "cannot move asset to another team")
			return
		}
		asset.TeamID = req.TeamID
	}

	asset.Name = req.Name
	asset.IPAddress = req.IPAddress
	asset.OSVersion = strings.TrimSpace(req.OSVersion)
	asset.PublicFacing = req.PublicFacing
	if req.OwnerID != nil {
		asset.OwnerID = req.OwnerID
	}
	if req.Environment != "" {
		asset.Environment = req.Environment
	}
	if req.Criticality != "" {
		asset.Criticality = req.Criticality
	}
	asset.BusinessImpact = req.BusinessImpact
	asset.AssetType = req.AssetType
	asset.Location = req.Location
	asset.ComplianceRequirements = req.ComplianceRequirements

	if err := database.DB.Save(&asset).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save asset")
		return
	}

	database.CreateAuditLog(user.ID, "asset", asset.ID, "update", "Updated asset: "+asset.Name)
	c.JSON(http.StatusOK, asset)
}

func DeleteAsset(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user)
	if !ok {
		return
	}

	if err := database.DB.Delete(&asset).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete asset")
		return
	}

	database.CreateAuditLog(user.ID, "asset", asset.ID, "delete", "Deleted asset: "+asset.Name)
	c.JSON(http.StatusOK, gin.H{"message": "asset deleted"})
}

// ReviewAsset фиксирует дату ручного ревью актива. Единственное место,
// где выставляется last_reviewed_date.
func ReviewAsset(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user)
	if !ok {
		return
	}

	now := time.Now().UTC()
	asset.LastReviewedDate = &now

	if err := database.DB.Save(&asset).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save asset")
		return
	}

	database.CreateAuditLog(user.ID, "asset", asset.ID, "review", "Reviewed asset: "+asset.Name)
	c.JSON(http.StatusOK, asset)
}
