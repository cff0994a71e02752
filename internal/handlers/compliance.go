package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ivm-inventory/internal/compliance"
	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

func thresholdDays(c *gin.Context) (int, bool) {
	days, err := strconv.Atoi(c.DefaultQuery("threshold_days", strconv.Itoa(compliance.DefaultOverdueDays)))
	if err != nil || days <= 0 {
		respondError(c, http.StatusBadRequest, "invalid threshold_days")
		return 0, false
	}
	return days, true
}

// ReviewCompliance — сводка по давности ревью активов в разрезе команд.
func ReviewCompliance(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	days, ok := thresholdDays(c)
	if !ok {
		return
	}

	teamQ := database.DB.Order("name asc")
	assetQ := database.DB
	if !user.IsAdmin {
		if user.TeamID == nil {
			c.JSON(http.StatusOK, gin.H{"teams": []compliance.TeamSummary{}, "flagged_teams": []string{}})
			return
		}
		teamQ = teamQ.Where("id = ?", *user.TeamID)
		assetQ = assetQ.Where("team_id = ?", *user.TeamID)
	}

	var teams []models.Team
	teamQ.Find(&teams)
	var assets []models.Asset
	assetQ.Find(&assets)

	summaries := compliance.TeamSummaries(teams, assets, time.Now().UTC(), days)

	flagged := []string{}
	for _, s := range summaries {
		if s.Flagged {
			flagged = append(flagged, s.TeamName)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"teams":         summaries,
		"flagged_teams": flagged,
	})
}

// OverdueAssets — активы, ревью которых просрочено.
func OverdueAssets(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	days, ok := thresholdDays(c)
	if !ok {
		return
	}

	q := database.DB
	if !user.IsAdmin {
		if user.TeamID == nil {
			c.JSON(http.StatusOK, gin.H{"count": 0, "assets": []compliance.AssetReview{}})
			return
		}
		q = q.Where("team_id = ?", *user.TeamID)
	}

	var assets []models.Asset
	q.Find(&assets)

	overdue := compliance.OverdueAssets(assets, time.Now().UTC(), days)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(overdue),
		"assets": overdue,
	})
}
