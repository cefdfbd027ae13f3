package controller

import (
	"strconv"

	"oasis/app_error"
	"oasis/auth"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminTeamController struct {
	teamService *service.TeamService
}

func NewAdminTeamController(db *gorm.DB) *AdminTeamController {
	return &AdminTeamController{
		teamService: service.NewTeamService(db),
	}
}

func setupAdminTeamController(db *gorm.DB) []RouteInfo {
	e := NewAdminTeamController(db)
	basePath := "/admin/teams"
	adminOnly := []auth.Role{auth.RoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getTeamsHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "POST", Path: "", HandlerFunc: e.createTeamHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/:team_id", HandlerFunc: e.updateTeamHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/:team_id", HandlerFunc: e.deleteTeamHandler(), Authenticated: true, RequiredRoles: adminOnly},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func paginationParams(c *gin.Context) (page int, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// @id AdminGetTeams
// @Description Fetches teams with pagination, search and sorting
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Name/email search"
// @Param sortBy query string false "Sort column"
// @Param order query string false "asc or desc"
// @Success 200 {object} map[string]any
// @Router /admin/teams [get]
func (e *AdminTeamController) getTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := paginationParams(c)
		teams, total, err := e.teamService.SearchTeams(
			c.Query("search"),
			c.DefaultQuery("sortBy", "points"),
			c.DefaultQuery("order", "desc"),
			page, limit)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{
			"success": true,
			"data": gin.H{
				"teams": Map(teams, toTeamResponse),
				"pagination": gin.H{
					"page":       page,
					"limit":      limit,
					"total":      total,
					"totalPages": (total + int64(limit) - 1) / int64(limit),
				},
			},
		})
	}
}

type AdminTeamCreate struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Members  []string `json:"members"`
}

// @id AdminCreateTeam
// @Description Creates a team
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param body body AdminTeamCreate true "Team to create"
// @Success 201 {object} TeamResponse
// @Router /admin/teams [post]
func (e *AdminTeamController) createTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create AdminTeamCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.CreateTeam(create.Name, create.Email, create.Password, create.Members)
		if err != nil {
			c.JSON(409, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(201, toTeamResponse(team))
	}
}

type AdminTeamUpdate struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Members []string `json:"members"`
}

// @id AdminUpdateTeam
// @Description Updates a team's identity fields. Score and challenge pointer
// @Description are owned by the award transition and cannot be set here.
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param team_id path int true "Team Id"
// @Param body body AdminTeamUpdate true "Fields to update"
// @Success 200 {object} TeamResponse
// @Router /admin/teams/{team_id} [put]
func (e *AdminTeamController) updateTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update AdminTeamUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.UpdateTeam(teamId, update.Name, update.Email, update.Members)
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

// @id AdminDeleteTeam
// @Description Deletes a team and its submissions
// @Tags admin
// @Security BearerAuth
// @Param team_id path int true "Team Id"
// @Success 204
// @Router /admin/teams/{team_id} [delete]
func (e *AdminTeamController) deleteTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.teamService.DeleteTeam(teamId); err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(204, nil)
	}
}
