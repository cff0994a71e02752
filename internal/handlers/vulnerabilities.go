package handlers

import (
	"net/http"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAssetVulnerabilities(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	asset, ok := loadAssetFor(c, user)
	if !ok {
		return
	}

	var vulns []models.Vulnerability
	database.DB.Where("asset_id = ?", asset.ID).Order("last_seen desc").Find(&vulns)
	c.JSON(http.StatusOK, vulns)
}

func ListTeamVulnerabilities(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	teamID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err != nil {
		respondError(c, http.StatusNotFound, "team not found")
		return
	}
	if !user.CanAccessTeam(teamID) {
		respondError(c, http.StatusForbidden, "access to this team is denied")
		return
	}

	var vulns []models.Vulnerability
	database.DB.
		Joins("JOIN assets ON assets.id = vulnerabilities.asset_id").
		Where("assets.team_id = ? AND assets.deleted_at IS NULL", teamID).
		Preload("Asset").
		Order("vulnerabilities.last_seen desc").
		Find(&vulns)
	c.JSON(http.StatusOK, vulns)
}

type vulnStatusRequest struct {
	Status models.VulnStatus `json:"status"`
}

// UpdateVulnerabilityStatus меняет локальный статус обработки уязвимости.
// Синхронизация со сканером это поле не трогает.
func UpdateVulnerabilityStatus(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req vulnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Status {
	case models.VulnOpen, models.VulnInReview, models.VulnFixed, models.VulnAccepted:
		// допустимые значения
	default:
		respondError(c, http.StatusBadRequest, "invalid status")
		return
	}

	var vuln models.Vulnerability
	if err := database.DB.First(&vuln, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "vulnerability not found")
		return
	}

	var asset models.Asset
	if err := database.DB.First(&asset, vuln.AssetID).Error; err != nil {
		respondError(c, http.StatusNotFound, "asset not found")
		return
	}
	if !user.CanAccessTeam(asset.TeamID) {
		respondError(c, http.StatusForbidden, "access to this asset is denied")
		return
	}

	vuln.Status = req.Status
	if err := database.DB.Save(&vuln).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save vulnerability")
		return
	}

	database.CreateAuditLog(user.ID, "vulnerability", vuln.ID, "update", "Changed vulnerability status to "+string(req.Status)+": "+vuln.Title)
	c.JSON(http.StatusOK, vuln)
}
