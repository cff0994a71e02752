package teams

import (
	"errors"
	"fmt"
	"strings"

	"ivm-inventory/internal/models"

	"gorm.io/gorm"
)

var (
	ErrDuplicateName = errors.New("team with this name already exists under the same parent")
	ErrCycle         = errors.New("team cannot become a descendant of itself")
)

// PreconditionError — отказ удаления команды с перечнем блокирующих связей.
type PreconditionError struct {
	TeamID     uint     `json:"team_id"`
	SubTeams   []string `json:"sub_teams,omitempty"`
	AssetCount int64    `json:"asset_count"`
	UserCount  int64    `json:"user_count"`
}

func (e *PreconditionError) Error() string {
	var parts []string
	if len(e.SubTeams) > 0 {
		parts = append(parts, fmt.Sprintf("%d sub-teams (%s)", len(e.SubTeams), strings.Join(e.SubTeams, ", ")))
	}
	if e.AssetCount > 0 {
		parts = append(parts, fmt.Sprintf("%d assets", e.AssetCount))
	}
	if e.UserCount > 0 {
		parts = append(parts, fmt.Sprintf("%d users", e.UserCount))
	}
	return fmt.Sprintf("team %d cannot be deleted: %s", e.TeamID, strings.Join(parts, ", "))
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Params struct {
	Name         string
	Description  string
	ParentTeamID *uint
	TeamType     models.TeamType
}

func (s *Service) Create(p Params) (*models.Team, error) {
	if p.TeamType == "" {
		p.TeamType = models.TeamMain
	}
	if p.ParentTeamID != nil {
		var parent models.Team
		if err := s.db.First(&parent, *p.ParentTeamID).Error; err != nil {
			return nil, fmt.Errorf("parent team: %w", err)
		}
	}
	if err := s.checkNameUnique(p.Name, p.ParentTeamID, 0); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:         p.Name,
		Description:  p.Description,
		ParentTeamID: p.ParentTeamID,
		TeamType:     p.TeamType,
	}
	if err := s.db.Create(team).Error; err != nil {
		return nil, err
	}
	return team, nil
}

func (s *Service) Update(id uint, p Params) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, id).Error; err != nil {
		return nil, err
	}

	if p.ParentTeamID != nil {
		if err := s.validateReparent(&team, *p.ParentTeamID); err != nil {
			return nil, err
		}
	}
	if err := s.checkNameUnique(p.Name, p.ParentTeamID, team.ID); err != nil {
		return nil, err
	}

	team.Name = p.Name
	team.Description = p.Description
	team.ParentTeamID = p.ParentTeamID
	if p.TeamType != "" {
		team.TeamType = p.TeamType
	}
	if err := s.db.Save(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Delete удаляет команду в транзакции. Команда с дочерними командами,
// активами или пользователями не удаляется — возвращается PreconditionError.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, id).Error; err != nil {
			return err
		}

		var subs []models.Team
		if err := tx.Where("parent_team_id = ?", id).Find(&subs).Error; err != nil {
			return err
		}

		var assetCount, userCount int64
		if err := tx.Model(&models.Asset{}).Where("team_id = ?", id).Count(&assetCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("team_id = ?", id).Count(&userCount).Error; err != nil {
			return err
		}

		if len(subs) > 0 || assetCount > 0 || userCount > 0 {
			names := make([]string, 0, len(subs))
			for _, sub := range subs {
				names = append(names, sub.Name)
			}
			return &PreconditionError{
				TeamID:     id,
				SubTeams:   names,
				AssetCount: assetCount,
				UserCount:  userCount,
			}
		}

		return tx.Delete(&models.Team{}, id).Error
	})
}

func (s *Service) All() ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Order("name asc").Find(&teams).Error
	return teams, err
}

func (s *Service) ByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// MainTeams — команды без родителя.
func (s *Service) MainTeams() ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Where("parent_team_id IS NULL").Order("name asc").Find(&teams).Error
	return teams, err
}

// SubTeams — прямые дочерние команды.
func (s *Service) SubTeams(parentID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Where("parent_team_id = ?", parentID).Order("name asc").Find(&teams).Error
	return teams, err
}

// Hierarchy — команда плюс её прямые подкоманды; ровно один уровень вниз,
// никакой рекурсии по дереву.
type Hierarchy struct {
	Team     models.Team   `json:"team"`
	SubTeams []models.Team `json:"sub_teams"`
}

func (s *Service) Hierarchy(id uint) (*Hierarchy, error) {
	var team models.Team
	if err := s.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	subs, err := s.SubTeams(id)
	if err != nil {
		return nil, err
	}
	return &Hierarchy{Team: team, SubTeams: subs}, nil
}

// validateReparent поднимается по родительским ссылкам нового родителя;
// встретить саму команду по пути — значит создать цикл.
func (s *Service) validateReparent(team *models.Team, newParentID uint) error {
	if newParentID == team.ID {
		return ErrCycle
	}

	seen := map[uint]struct{}{team.ID: {}}
	currentID := newParentID
	for currentID != 0 {
		if _, ok := seen[currentID]; ok {
			return ErrCycle
		}
		seen[currentID] = struct{}{}

		var parent models.Team
		if err := s.db.Select("id", "parent_team_id").First(&parent, currentID).Error; err != nil {
			return fmt.Errorf("parent team: %w", err)
		}
		if parent.ParentTeamID == nil {
			return nil
		}
		currentID = *parent.ParentTeamID
	}
	return nil
}

func (s *Service) checkNameUnique(name string, parentID *uint, excludeID uint) error {
	q := s.db.Model(&models.Team{}).Where("name = ?", name)
	if parentID == nil {
		q = q.Where("parent_team_id IS NULL")
	} else {
		q = q.Where("parent_team_id = ?", *parentID)
	}
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}
