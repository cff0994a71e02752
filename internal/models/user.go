package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FullName     string `gorm:"size:100" json:"full_name"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"is_admin"`
	TeamID       *uint  `json:"team_id"`
	Team         *Team  `json:"team,omitempty"`
}

// админ видит всё, остальные — только свою команду
func (u *User) CanAccessTeam(teamID uint) bool {
	if u.IsAdmin {
		return true
	}
	return u.TeamID != nil && *u.TeamID == teamID
}
