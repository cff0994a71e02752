package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"ivm-inventory/internal/config"
	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/reconcile"

	"github.com/gin-gonic/gin"
)

func syncErrorStatus(err error) int {
	// без единой команды в БД синку некуда класть новые активы
	if errors.Is(err, reconcile.ErrNoFallbackTeam) {
		return http.StatusBadRequest
	}
	return scannerErrorStatus(err)
}

type syncAssetsRequest struct {
	SiteID int `json:"site_id"`
}

type syncVulnsRequest struct {
	IP string `json:"ip"`
}

// SyncAssets подтягивает активы из сканера в локальную БД.
func SyncAssets(engine *reconcile.Engine, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		// тело опционально: без него синкаем все активы сканера
		var req syncAssetsRequest
		_ = c.ShouldBindJSON(&req)
		if req.SiteID < 0 {
			respondError(c, http.StatusBadRequest, "invalid site_id")
			return
		}

		report, err := engine.SyncAssets(c.Request.Context(), reconcile.AssetScope{SiteID: req.SiteID}, reconcile.RunOptions{
			ActingUserID:   user.ID,
			FallbackTeamID: cfg.SyncFallbackTeamID,
		})
		if err != nil {
			respondError(c, syncErrorStatus(err), err.Error())
			return
		}

		database.CreateAuditLog(user.ID, "sync", 0, "sync_assets",
			fmt.Sprintf("Asset sync finished: %d synced, %d errors", report.SyncedCount, report.ErrorCount))
		c.JSON(http.StatusOK, report)
	}
}

// SyncVulnerabilities подтягивает уязвимости из сканера.
func SyncVulnerabilities(engine *reconcile.Engine, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var req syncVulnsRequest
		_ = c.ShouldBindJSON(&req)

		report, err := engine.SyncVulnerabilities(c.Request.Context(), reconcile.VulnScope{IP: req.IP}, reconcile.RunOptions{
			ActingUserID:   user.ID,
			FallbackTeamID: cfg.SyncFallbackTeamID,
		})
		if err != nil {
			respondError(c, syncErrorStatus(err), err.Error())
			return
		}

		database.CreateAuditLog(user.ID, "sync", 0, "sync_vulnerabilities",
			fmt.Sprintf("Vulnerability sync finished: %d synced, %d errors", report.SyncedCount, report.ErrorCount))
		c.JSON(http.StatusOK, report)
	}
}
