package database

import (
	"context"
	"errors"

	"ivm-inventory/internal/models"

	"gorm.io/gorm"
)

// SyncStore — персистентность движка синхронизации. Каждый вызов — отдельный
// коммит, чтобы прогресс синка переживал падение посреди прогона.
type SyncStore struct {
	db *gorm.DB
}

func NewSyncStore(db *gorm.DB) *SyncStore {
	return &SyncStore{db: db}
}

func (s *SyncStore) AssetByIP(ctx context.Context, ip string) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).Where("ip_address = ?", ip).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *SyncStore) VulnerabilityByExternalID(ctx context.Context, assetID uint, externalID string) (*models.Vulnerability, error) {
	var vuln models.Vulnerability
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND external_id = ?", assetID, externalID).
		First(&vuln).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vuln, nil
}

func (s *SyncStore) CreateAsset(ctx context.Context, asset *models.Asset) error {
	return s.db.WithContext(ctx).Create(asset).Error
}

func (s *SyncStore) UpdateAsset(ctx context.Context, asset *models.Asset) error {
	return s.db.WithContext(ctx).Save(asset).Error
}

func (s *SyncStore) CreateVulnerability(ctx context.Context, vuln *models.Vulnerability) error {
	return s.db.WithContext(ctx).Create(vuln).Error
}

func (s *SyncStore) UpdateVulnerability(ctx context.Context, vuln *models.Vulnerability) error {
	return s.db.WithContext(ctx).Save(vuln).Error
}

func (s *SyncStore) FirstTeam(ctx context.Context) (*models.Team, error) {
	var team models.Team
	err := s.db.WithContext(ctx).Order("id asc").First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}
