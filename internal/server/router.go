package server

import (
	"ivm-inventory/internal/auth"
	"ivm-inventory/internal/config"
	"ivm-inventory/internal/database"
	"ivm-inventory/internal/handlers"
	"ivm-inventory/internal/insightvm"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/reconcile"
	"ivm-inventory/internal/teams"

	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config, client *insightvm.Client, engine *reconcile.Engine, mgr *auth.Manager) *gin.Engine {
	r := gin.Default()

	teamSvc := teams.NewService(database.DB)

	// ОТКРЫТЫЕ МАРШРУТЫ
	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)
	r.POST("/auth/login", handlers.Login(mgr))

	authed := r.Group("/")
	authed.Use(middleware.RequireAuth(mgr))

	// ПОЛЬЗОВАТЕЛИ
	authed.GET("/users/me", handlers.Me)
	authed.GET("/users",
		middleware.RequireAdmin(),
		handlers.ListUsers,
	)
	authed.POST("/users",
		middleware.RequireAdmin(),
		handlers.CreateUser,
	)

	// КОМАНДЫ
	authed.GET("/teams", handlers.ListTeams(teamSvc))
	authed.GET("/teams/main", handlers.ListMainTeams(teamSvc))
	authed.GET("/teams/:id", handlers.GetTeam(teamSvc))
	authed.GET("/teams/:id/subteams", handlers.ListSubTeams(teamSvc))
	authed.GET("/teams/:id/hierarchy", handlers.TeamHierarchy(teamSvc))

	// изменение структуры команд — только админ
	authed.POST("/teams",
		middleware.RequireAdmin(),
		handlers.CreateTeam(teamSvc),
	)
	authed.PUT("/teams/:id",
		middleware.RequireAdmin(),
		handlers.UpdateTeam(teamSvc),
	)
	authed.DELETE("/teams/:id",
		middleware.RequireAdmin(),
		handlers.DeleteTeam(teamSvc),
	)

	// АКТИВЫ
	authed.GET("/assets", handlers.ListAssets)
	authed.POST("/assets", handlers.CreateAsset)
	authed.GET("/assets/:id", handlers.GetAsset)
	authed.PUT("/assets/:id", handlers.UpdateAsset)
	authed.DELETE("/assets/:id", handlers.DeleteAsset)
	authed.POST("/assets/:id/review", handlers.ReviewAsset)

	// СЕРВИСЫ АКТИВА
	authed.GET("/assets/:id/services", handlers.ListAssetServices)
	authed.POST("/assets/:id/services", handlers.CreateAssetService)
	authed.DELETE("/services/:id", handlers.DeleteService)

	// УЯЗВИМОСТИ
	authed.GET("/assets/:id/vulnerabilities", handlers.ListAssetVulnerabilities)
	authed.GET("/vulnerabilities/team/:id", handlers.ListTeamVulnerabilities)
	authed.PUT("/vulnerabilities/:id/status", handlers.UpdateVulnerabilityStatus)

	// СКАНЫ
	authed.POST("/assets/:id/scan", handlers.StartAssetScan(client))
	authed.GET("/assets/:id/scans", handlers.ListAssetScans(client))

	// СИНХРОНИЗАЦИЯ СО СКАНЕРОМ — только админ
	authed.POST("/sync/assets",
		middleware.RequireAdmin(),
		handlers.SyncAssets(engine, cfg),
	)
	authed.POST("/sync/vulnerabilities",
		middleware.RequireAdmin(),
		handlers.SyncVulnerabilities(engine, cfg),
	)
	authed.GET("/insightvm/status",
		middleware.RequireAdmin(),
		handlers.InsightVMStatus(client),
	)
	authed.GET("/insightvm/sites",
		middleware.RequireAdmin(),
		handlers.InsightVMSites(client),
	)

	// КОМПЛАЕНС
	authed.GET("/compliance/review", handlers.ReviewCompliance)
	authed.GET("/compliance/overdue", handlers.OverdueAssets)

	// АУДИТ
	authed.GET("/audit",
		middleware.RequireAdmin(),
		handlers.ListAuditLogs,
	)

	return r
}
