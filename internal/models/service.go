package models

import "gorm.io/gorm"

type Service struct {
	gorm.Model
	AssetID     uint   `gorm:"not null;index" json:"asset_id"`
	ServiceName string `gorm:"size:100;not null" json:"service_name"`
	Port        int    `json:"port"`
	Protocol    string `gorm:"size:10;not null;default:TCP" json:"protocol"`
	Version     string `gorm:"size:100" json:"version"`
}
