package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/insightvm"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"

	"github.com/gin-gonic/gin"
)

type startScanRequest struct {
	Name     string          `json:"name"`
	ScanType models.ScanType `json:"scan_type"`
}

// StartAssetScan находит актив на сканере по IP и запускает скан его сайта.
func StartAssetScan(client *insightvm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		asset, ok := loadAssetFor(c, user)
		if !ok {
			return
		}

		// тело опционально
		var req startScanRequest
		_ = c.ShouldBindJSON(&req)

		if req.ScanType == "" {
			req.ScanType = models.ScanVulnerability
		}
		switch req.ScanType {
		case models.ScanVulnerability, models.ScanDiscovery:
		default:
			respondError(c, http.StatusBadRequest, "invalid scan_type")
			return
		}

		ctx := c.Request.Context()

		found, err := client.SearchAssetsByIP(ctx, asset.IPAddress)
		if err != nil {
			respondError(c, scannerErrorStatus(err), err.Error())
			return
		}
		if len(found) == 0 {
			respondError(c, http.StatusNotFound, "asset not found in scanner")
			return
		}

		ext := found[0]
		ref, err := client.StartAssetScan(ctx, ext.SiteID, strings.TrimSpace(req.Name), []int64{ext.ID})
		if err != nil {
			respondError(c, scannerErrorStatus(err), err.Error())
			return
		}

		scan := models.Scan{
			AssetID:     asset.ID,
			InitiatedBy: user.ID,
			ScanType:    req.ScanType,
			Status:      models.ScanPending,
			ScanDate:    time.Now().UTC(),
		}
		if ref != nil && ref.ID != 0 {
			scan.ExternalScanID = strconv.FormatInt(ref.ID, 10)
		}

		if err := database.DB.Create(&scan).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "failed to save scan")
			return
		}

		database.CreateAuditLog(user.ID, "scan", scan.ID, "create", "Started scan for asset: "+asset.Name)
		c.JSON(http.StatusCreated, scan)
	}
}

// ListAssetScans отдаёт историю сканов актива, по пути обновляя статусы
// незавершённых сканов из сканера. Ошибки обновления не валят выдачу.
func ListAssetScans(client *insightvm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		asset, ok := loadAssetFor(c, user)
		if !ok {
			return
		}

		var scans []models.Scan
		database.DB.Where("asset_id = ?", asset.ID).Order("created_at desc").Find(&scans)

		ctx := c.Request.Context()
		for i := range scans {
			s := &scans[i]
			if s.ExternalScanID == "" {
				continue
			}
			if s.Status != models.ScanPending && s.Status != models.ScanRunning {
				continue
			}

			extID, err := strconv.ParseInt(s.ExternalScanID, 10, 64)
			if err != nil {
				continue
			}
			info, err := client.Scan(ctx, extID)
			if err != nil {
				continue
			}

			status, done := scanStatusFromScanner(info.Status)
			if status == s.Status {
				continue
			}
			s.Status = status
			if done {
				now := time.Now().UTC()
				s.CompletedDate = &now
			}
			database.DB.Save(s)
		}

		c.JSON(http.StatusOK, scans)
	}
}

// scanStatusFromScanner сводит статусы сканера к нашим; второй результат —
// признак терминального состояния.
func scanStatusFromScanner(s string) (models.ScanStatus, bool) {
	switch strings.ToLower(s) {
	case "finished":
		return models.ScanCompleted, true
	case "error", "stopped", "aborted":
		return models.ScanFailed, true
	case "running", "integrating", "dispatched":
		return models.ScanRunning, false
	default:
		return models.ScanPending, false
	}
}
