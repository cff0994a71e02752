package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ivm-inventory/internal/insightvm"
	"ivm-inventory/internal/logger"
	"ivm-inventory/internal/models"

	"github.com/sirupsen/logrus"
)

// описание уязвимости режем до фиксированной длины
const maxDescriptionLen = 1000

var ErrNoFallbackTeam = errors.New("no local team available for synced assets")

// Scanner — операции сканера, нужные движку синхронизации.
type Scanner interface {
	TestConnection(ctx context.Context) (json.RawMessage, error)
	Assets(ctx context.Context, page, size int) (*insightvm.AssetPage, error)
	SiteAssets(ctx context.Context, siteID, page, size int) (*insightvm.AssetPage, error)
	AssetVulnerabilities(ctx context.Context, assetID int64, page, size int) (*insightvm.FindingPage, error)
	SearchAssetsByIP(ctx context.Context, ip string) ([]insightvm.Asset, error)
}

// Store — персистентность движка. Поиски возвращают (nil, nil), когда
// записи нет; каждая запись коммитится отдельно.
type Store interface {
	AssetByIP(ctx context.Context, ip string) (*models.Asset, error)
	VulnerabilityByExternalID(ctx context.Context, assetID uint, externalID string) (*models.Vulnerability, error)
	CreateAsset(ctx context.Context, asset *models.Asset) error
	UpdateAsset(ctx context.Context, asset *models.Asset) error
	CreateVulnerability(ctx context.Context, vuln *models.Vulnerability) error
	UpdateVulnerability(ctx context.Context, vuln *models.Vulnerability) error
	FirstTeam(ctx context.Context) (*models.Team, error)
}

// AssetScope выбирает источник активов: весь сканер или один сайт.
type AssetScope struct {
	SiteID int // 0 — все активы
}

// VulnScope выбирает охват синка уязвимостей: все активы или один IP.
type VulnScope struct {
	IP string // пусто — все активы
}

// RunOptions — контекст запуска: кто запустил и какой команде
// отдавать созданные синком активы.
type RunOptions struct {
	ActingUserID   uint
	FallbackTeamID uint // 0 — взять первую команду из БД
}

type Engine struct {
	scanner  Scanner
	store    Store
	pageSize int
}

func NewEngine(scanner Scanner, store Store, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Engine{scanner: scanner, store: store, pageSize: pageSize}
}

// SyncAssets сверяет активы сканера с локальными по IP: создаёт
// отсутствующие, обновляет имя/ОС у существующих. Ошибка отдельной записи
// попадает в отчёт и не прерывает прогон.
func (e *Engine) SyncAssets(ctx context.Context, scope AssetScope, run RunOptions) (*Report, error) {
	rep := newReport()

	teamID, err := e.resolveFallbackTeam(ctx, run.FallbackTeamID)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(logrus.Fields{"run_id": rep.RunID, "site_id": scope.SiteID})
	log.Info("asset sync started")

	page := 0
	for {
		var ap *insightvm.AssetPage
		if scope.SiteID > 0 {
			ap, err = e.scanner.SiteAssets(ctx, scope.SiteID, page, e.pageSize)
		} else {
			ap, err = e.scanner.Assets(ctx, page, e.pageSize)
		}
		if err != nil {
			if page == 0 {
				// не смогли получить даже первую страницу — стартовать нечем
				return nil, err
			}
			rep.addError(fmt.Sprintf("failed to fetch assets page %d: %v", page, err))
			break
		}

		for _, ext := range ap.Resources {
			if ext.IP == "" {
				// неполная запись сканера, не ошибка
				continue
			}
			if err := e.upsertAsset(ctx, ext, teamID, run.ActingUserID); err != nil {
				rep.addError(fmt.Sprintf("asset %s: %v", ext.IP, err))
				continue
			}
			rep.SyncedCount++
		}

		page++
		if page >= ap.Page.TotalPages || len(ap.Resources) == 0 {
			break
		}
	}

	rep.finish()
	log.WithFields(logrus.Fields{"synced": rep.SyncedCount, "errors": rep.ErrorCount}).Info("asset sync finished")
	return rep, nil
}

// SyncVulnerabilities подтягивает уязвимости сканера для всех активов или
// одного IP. Перед прогоном проверяет связь со сканером и при отказе не
// пишет в БД вообще.
func (e *Engine) SyncVulnerabilities(ctx context.Context, scope VulnScope, run RunOptions) (*Report, error) {
	if _, err := e.scanner.TestConnection(ctx); err != nil {
		return nil, err
	}

	rep := newReport()

	teamID, err := e.resolveFallbackTeam(ctx, run.FallbackTeamID)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(logrus.Fields{"run_id": rep.RunID, "ip": scope.IP})
	log.Info("vulnerability sync started")

	if scope.IP != "" {
		found, err := e.scanner.SearchAssetsByIP(ctx, scope.IP)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, &insightvm.APIError{
				Kind:    insightvm.ErrNotFound,
				Message: fmt.Sprintf("asset %s not found in scanner", scope.IP),
			}
		}
		for _, ext := range found {
			e.syncAssetVulns(ctx, ext, teamID, run.ActingUserID, rep)
		}
	} else {
		page := 0
		for {
			ap, err := e.scanner.Assets(ctx, page, e.pageSize)
			if err != nil {
				if page == 0 {
					return nil, err
				}
				rep.addError(fmt.Sprintf("failed to fetch assets page %d: %v", page, err))
				break
			}
			for _, ext := range ap.Resources {
				e.syncAssetVulns(ctx, ext, teamID, run.ActingUserID, rep)
			}
			page++
			if page >= ap.Page.TotalPages || len(ap.Resources) == 0 {
				break
			}
		}
	}

	rep.finish()
	log.WithFields(logrus.Fields{"synced": rep.SyncedCount, "errors": rep.ErrorCount}).Info("vulnerability sync finished")
	return rep, nil
}

// syncAssetVulns прогоняет все страницы уязвимостей одного внешнего актива.
// Сбой листинга или отдельной записи изолируется в отчёте.
func (e *Engine) syncAssetVulns(ctx context.Context, ext insightvm.Asset, teamID, actingUserID uint, rep *Report) {
	if ext.IP == "" {
		return
	}

	local, err := e.store.AssetByIP(ctx, ext.IP)
	if err != nil {
		rep.addError(fmt.Sprintf("asset %s: %v", ext.IP, err))
		return
	}
	if local == nil {
		// уязвимостям нужен локальный актив — создаём по той же схеме, что и синк активов
		local = newLocalAsset(ext, teamID, actingUserID)
		if err := e.store.CreateAsset(ctx, local); err != nil {
			rep.addError(fmt.Sprintf("asset %s: %v", ext.IP, err))
			return
		}
	}

	page := 0
	for {
		fp, err := e.scanner.AssetVulnerabilities(ctx, ext.ID, page, e.pageSize)
		if err != nil {
			rep.addError(fmt.Sprintf("asset %s: failed to list vulnerabilities: %v", ext.IP, err))
			return
		}
		for _, finding := range fp.Resources {
			if err := e.upsertVulnerability(ctx, local.ID, finding); err != nil {
				rep.addError(fmt.Sprintf("vulnerability %s on asset %s: %v", finding.ID, ext.IP, err))
				continue
			}
			rep.SyncedCount++
		}
		page++
		if page >= fp.Page.TotalPages || len(fp.Resources) == 0 {
			break
		}
	}
}

// upsertAsset находит локальный актив по IP и обновляет описательные поля,
// либо создаёт новый. Команду, владельца и критичность синк не трогает.
func (e *Engine) upsertAsset(ctx context.Context, ext insightvm.Asset, teamID, actingUserID uint) error {
	existing, err := e.store.AssetByIP(ctx, ext.IP)
	if err != nil {
		return err
	}

	if existing == nil {
		return e.store.CreateAsset(ctx, newLocalAsset(ext, teamID, actingUserID))
	}

	existing.Name = externalName(ext)
	existing.OSVersion = ext.OS
	return e.store.UpdateAsset(ctx, existing)
}

// upsertVulnerability сверяет запись по паре (asset_id, external_id).
// Статус и дату обнаружения обновление не трогает.
func (e *Engine) upsertVulnerability(ctx context.Context, assetID uint, finding insightvm.Finding) error {
	existing, err := e.store.VulnerabilityByExternalID(ctx, assetID, finding.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	title := finding.Title
	if title == "" {
		title = finding.ID
	}
	desc := truncate(finding.Description, maxDescriptionLen)
	severity := NormalizeSeverity(finding.Severity)
	score := formatScore(finding.CVSSScore)

	if existing == nil {
		vuln := &models.Vulnerability{
			AssetID:        assetID,
			ExternalID:     finding.ID,
			Title:          title,
			Description:    desc,
			Severity:       severity,
			CVSSScore:      score,
			Status:         models.VulnOpen,
			DiscoveredDate: now,
			LastSeen:       now,
		}
		err := e.store.CreateVulnerability(ctx, vuln)
		if err == nil {
			return nil
		}
		// параллельный прогон мог вставить запись первым: уникальный индекс
		// по (asset_id, external_id) превращает гонку в путь обновления
		again, lookErr := e.store.VulnerabilityByExternalID(ctx, assetID, finding.ID)
		if lookErr != nil || again == nil {
			return err
		}
		return e.applyVulnUpdate(ctx, again, title, desc, severity, score, now)
	}

	return e.applyVulnUpdate(ctx, existing, title, desc, severity, score, now)
}

func (e *Engine) applyVulnUpdate(ctx context.Context, vuln *models.Vulnerability, title, desc string, severity models.Severity, score string, now time.Time) error {
	vuln.Title = title
	vuln.Description = desc
	vuln.Severity = severity
	vuln.CVSSScore = score
	vuln.LastSeen = now
	return e.store.UpdateVulnerability(ctx, vuln)
}

func (e *Engine) resolveFallbackTeam(ctx context.Context, configured uint) (uint, error) {
	if configured > 0 {
		return configured, nil
	}
	team, err := e.store.FirstTeam(ctx)
	if err != nil {
		return 0, err
	}
	if team == nil {
		return 0, ErrNoFallbackTeam
	}
	logger.Warnf("sync fallback team is not configured, using team %q (id=%d)", team.Name, team.ID)
	return team.ID, nil
}

func newLocalAsset(ext insightvm.Asset, teamID, actingUserID uint) *models.Asset {
	asset := &models.Asset{
		Name:      externalName(ext),
		IPAddress: ext.IP,
		OSVersion: ext.OS,
		TeamID:    teamID,
	}
	if actingUserID > 0 {
		ownerID := actingUserID
		asset.OwnerID = &ownerID
	}
	return asset
}

func externalName(ext insightvm.Asset) string {
	if ext.HostName != "" {
		return ext.HostName
	}
	return "asset-" + ext.IP
}

// NormalizeSeverity приводит severity сканера к локальному словарю;
// незнакомые значения пропускаются в нижнем регистре.
func NormalizeSeverity(s string) models.Severity {
	switch strings.ToLower(s) {
	case "critical":
		return models.SeverityCritical
	case "severe":
		return models.SeverityHigh
	case "moderate":
		return models.SeverityMedium
	case "low":
		return models.SeverityLow
	default:
		return models.Severity(strings.ToLower(s))
	}
}

func formatScore(score float64) string {
	if score == 0 {
		return ""
	}
	return strconv.FormatFloat(score, 'f', 1, 64)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
