package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ivm-inventory/internal/database"
	"ivm-inventory/internal/middleware"
	"ivm-inventory/internal/models"
	"ivm-inventory/internal/teams"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type teamRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ParentTeamID *uint           `json:"parent_team_id"`
	TeamType     models.TeamType `json:"team_type"`
}

//
// СОЗДАНИЕ / ИЗМЕНЕНИЕ / УДАЛЕНИЕ
//

func CreateTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			respondError(c, http.StatusBadRequest, "team name is required")
			return
		}

		team, err := svc.Create(teams.Params{
			Name:         req.Name,
			Description:  req.Description,
			ParentTeamID: req.ParentTeamID,
			TeamType:     req.TeamType,
		})
		if err != nil {
			writeTeamError(c, err)
			return
		}

		if actor, ok := middleware.CurrentUser(c); ok {
			database.CreateAuditLog(actor.ID, "team", team.ID, "create", "Created team: "+team.Name)
		}
		c.JSON(http.StatusCreated, team)
	}
}

func UpdateTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req teamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			respondError(c, http.StatusBadRequest, "team name is required")
			return
		}

		team, err := svc.Update(id, teams.Params{
			Name:         req.Name,
			Description:  req.Description,
			ParentTeamID: req.ParentTeamID,
			TeamType:     req.TeamType,
		})
		if err != nil {
			writeTeamError(c, err)
			return
		}

		if actor, ok := middleware.CurrentUser(c); ok {
			database.CreateAuditLog(actor.ID, "team", team.ID, "update", "Updated team: "+team.Name)
		}
		c.JSON(http.StatusOK, team)
	}
}

func DeleteTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := svc.Delete(id); err != nil {
			var pre *teams.PreconditionError
			if errors.As(err, &pre) {
				// удаление блокируют живые ссылки; подробности отдаём клиенту
				c.JSON(http.StatusConflict, gin.H{
					"error":       pre.Error(),
					"sub_teams":   pre.SubTeams,
					"asset_count": pre.AssetCount,
					"user_count":  pre.UserCount,
				})
				return
			}
			writeTeamError(c, err)
			return
		}

		if actor, ok := middleware.CurrentUser(c); ok {
			database.CreateAuditLog(actor.ID, "team", id, "delete", "Deleted team")
		}
		c.JSON(http.StatusOK, gin.H{"message": "team deleted"})
	}
}

//
// ЧТЕНИЕ
//

func ListTeams(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.All()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to list teams")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func ListMainTeams(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.MainTeams()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to list teams")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		team, err := svc.ByID(id)
		if err != nil {
			writeTeamError(c, err)
			return
		}
		c.JSON(http.StatusOK, team)
	}
}

func ListSubTeams(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		list, err := svc.SubTeams(id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to list sub-teams")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func TeamHierarchy(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		h, err := svc.Hierarchy(id)
		if err != nil {
			writeTeamError(c, err)
			return
		}
		c.JSON(http.StatusOK, h)
	}
}

func writeTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "team not found")
	case errors.Is(err, teams.ErrDuplicateName):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, teams.ErrCycle):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "failed to process team")
	}
}
