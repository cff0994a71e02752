package models

import (
	"time"

	"gorm.io/gorm"
)

type Environment string
type Criticality string

const (
	EnvDev  Environment = "dev"
	EnvUAT  Environment = "uat"
	EnvProd Environment = "prod"

	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

type Asset struct {
	gorm.Model
	Name      string `gorm:"size:100;not null" json:"name"`
	IPAddress string `gorm:"size:45;not null;index" json:"ip_address"` // ключ сверки со сканером
	OSVersion string `gorm:"size:100" json:"os_version"`

	PublicFacing bool  `gorm:"not null;default:false" json:"public_facing"`
	TeamID       uint  `gorm:"not null;index" json:"team_id"`
	Team         *Team `json:"team,omitempty"`
	OwnerID      *uint `json:"owner_id"`
	Owner        *User `json:"owner,omitempty"`

	// дата последнего ревью выставляется только явным действием, не синком
	LastReviewedDate *time.Time `json:"last_reviewed_date"`

	Environment Environment `gorm:"type:varchar(20);not null;default:dev" json:"environment"`
	Criticality Criticality `gorm:"type:varchar(20);not null;default:medium" json:"criticality"`

	BusinessImpact         string `gorm:"size:50" json:"business_impact"`
	AssetType              string `gorm:"size:50" json:"asset_type"` // server, database, network_device и т.п.
	Location               string `gorm:"size:100" json:"location"`
	ComplianceRequirements string `gorm:"type:text" json:"compliance_requirements"`

	Services        []Service       `json:"services,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
	Scans           []Scan          `json:"-"`
}
