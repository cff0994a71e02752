package models

import (
	"time"

	"gorm.io/gorm"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type VulnStatus string

const (
	VulnOpen     VulnStatus = "open"
	VulnInReview VulnStatus = "in_review"
	VulnFixed    VulnStatus = "fixed"
	VulnAccepted VulnStatus = "accepted"
)

type Vulnerability struct {
	gorm.Model
	AssetID uint   `gorm:"not null;uniqueIndex:idx_vulns_asset_external" json:"asset_id"`
	Asset   *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`

	// идентификатор уязвимости на стороне сканера; пара (asset_id, external_id) уникальна
	ExternalID string `gorm:"size:100;not null;uniqueIndex:idx_vulns_asset_external" json:"external_id"`

	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Severity    Severity `gorm:"type:varchar(20);not null" json:"severity"`
	CVSSScore   string   `gorm:"size:10" json:"cvss_score"`

	// статус и дата обнаружения живут локально: синк их не перетирает
	Status         VulnStatus `gorm:"type:varchar(20);not null;default:open" json:"status"`
	DiscoveredDate time.Time  `json:"discovered_date"`
	LastSeen       time.Time  `json:"last_seen"`
}
