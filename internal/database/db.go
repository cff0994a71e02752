package database

import (
	"time"

	"ivm-inventory/internal/config"
	"ivm-inventory/internal/logger"
	"ivm-inventory/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		logger.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
		if err == nil {
			logger.Info("connected to DB successfully")
			break
		}

		logger.Warnf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		logger.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	// миграции
	err = DB.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.Asset{},
		&models.Service{},
		&models.Vulnerability{},
		&models.Scan{},
		&models.AuditLog{},
	)
	if err != nil {
		logger.Fatalf("failed to migrate: %v", err)
	}

	createDefaultAdmin(cfg)
}

// стартовые данные: команда по умолчанию и админ (только из конфига)
func createDefaultAdmin(cfg *config.Config) {
	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "Admin123!"
	}
	email := cfg.AdminEmail
	if email == "" {
		email = "admin@inventory.local"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("is_admin = ?", true).
		Count(&count).Error; err != nil {
		logger.Errorf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		// админ уже есть — ничего не делаем
		return
	}

	var team models.Team
	if err := DB.Order("id asc").First(&team).Error; err != nil {
		team = models.Team{
			Name:        "IT Security Team",
			Description: "Default team for system administrators",
			TeamType:    models.TeamMain,
		}
		if err := DB.Create(&team).Error; err != nil {
			logger.Errorf("failed to create default team: %v", err)
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Errorf("failed to hash default admin password: %v", err)
		return
	}

	teamID := team.ID
	admin := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "System Administrator",
		IsActive:     true,
		IsAdmin:      true,
		TeamID:       &teamID,
	}

	if err := DB.Create(&admin).Error; err != nil {
		logger.Errorf("failed to create default admin: %v", err)
		return
	}

	logger.Infof("created default admin user: %s", username)
}
