package models

import "gorm.io/gorm"

type TeamType string

const (
	TeamMain   TeamType = "main"
	TeamSub    TeamType = "sub"
	TeamShared TeamType = "shared"
)

type Team struct {
	gorm.Model
	Name         string   `gorm:"size:100;not null;index:idx_teams_name_parent" json:"name"`
	Description  string   `gorm:"type:text" json:"description"`
	ParentTeamID *uint    `gorm:"index:idx_teams_name_parent" json:"parent_team_id"` // nil — корневая команда
	ParentTeam   *Team    `gorm:"foreignKey:ParentTeamID" json:"-"`
	TeamType     TeamType `gorm:"type:varchar(20);not null;default:main" json:"team_type"`

	SubTeams []Team  `gorm:"foreignKey:ParentTeamID" json:"sub_teams,omitempty"`
	Users    []User  `gorm:"foreignKey:TeamID" json:"-"`
	Assets   []Asset `gorm:"foreignKey:TeamID" json:"-"`
}
