package models

import (
	"time"

	"gorm.io/gorm"
)

type ScanType string
type ScanStatus string

const (
	ScanVulnerability ScanType = "vulnerability"
	ScanDiscovery     ScanType = "discovery"

	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

type Scan struct {
	gorm.Model
	AssetID uint `gorm:"not null;index" json:"asset_id"`

	InitiatedBy uint       `gorm:"not null" json:"initiated_by"` // User.ID запустившего
	ScanType    ScanType   `gorm:"type:varchar(50);not null;default:vulnerability" json:"scan_type"`
	Status      ScanStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	// идентификатор скана на стороне сканера
	ExternalScanID string `gorm:"size:100" json:"external_scan_id"`

	ScanDate      time.Time  `json:"scan_date"`
	CompletedDate *time.Time `json:"completed_date"`
	Results       string     `gorm:"type:text" json:"results"`
}
