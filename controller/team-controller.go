package controller

import (
	"oasis/app_error"
	"oasis/auth"
	"oasis/repository"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TeamController struct {
	teamService *service.TeamService
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{
		teamService: service.NewTeamService(db),
	}
}

func setupTeamController(db *gorm.DB) []RouteInfo {
	e := NewTeamController(db)
	return []RouteInfo{
		{Method: "POST", Path: "/signup", HandlerFunc: e.signupHandler()},
		{Method: "POST", Path: "/login", HandlerFunc: e.loginHandler()},
		{Method: "GET", Path: "/me", HandlerFunc: e.getMeHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleTeam}},
		{Method: "GET", Path: "/teams", HandlerFunc: e.getTeamsHandler()},
	}
}

type TeamSignup struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Members  []string `json:"members"`
}

type TeamLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TeamResponse struct {
	Id               int      `json:"id"`
	Name             string   `json:"name"`
	Members          []string `json:"members"`
	GithubLogin      *string  `json:"githubLogin,omitempty"`
	Points           int      `json:"points"`
	CurrentChallenge int      `json:"currentChallenge"`
}

func toTeamResponse(team *repository.Team) *TeamResponse {
	return &TeamResponse{
		Id:               team.Id,
		Name:             team.Name,
		Members:          team.Members,
		GithubLogin:      team.GithubLogin,
		Points:           team.Points,
		CurrentChallenge: team.CurrentChallenge,
	}
}

// @id Signup
// @Description Registers a new team
// @Tags team
// @Accept json
// @Produce json
// @Param body body TeamSignup true "Team to register"
// @Success 201 {object} TeamResponse
// @Router /signup [post]
func (e *TeamController) signupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var signup TeamSignup
		if err := c.BindJSON(&signup); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.Signup(signup.Name, signup.Email, signup.Password, signup.Members)
		if err != nil {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}
		c.JSON(201, toTeamResponse(team))
	}
}

// @id Login
// @Description Authenticates a team and sets the auth cookie
// @Tags team
// @Accept json
// @Produce json
// @Param body body TeamLogin true "Credentials"
// @Success 200 {object} TeamResponse
// @Router /login [post]
func (e *TeamController) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var login TeamLogin
		if err := c.BindJSON(&login); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, token, err := e.teamService.Login(login.Email, login.Password)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}
		c.SetCookie("auth", token, 60*60*24, "/", "", false, true)
		c.JSON(200, gin.H{"token": token, "team": toTeamResponse(team)})
	}
}

// @id GetMe
// @Description Returns the authenticated team with its submissions
// @Tags team
// @Security BearerAuth
// @Produce json
// @Success 200 {object} TeamResponse
// @Router /me [get]
func (e *TeamController) getMeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getClaims(c)
		if claims == nil {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			return
		}
		team, err := e.teamService.GetTeamById(claims.SubjectId)
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

// @id GetTeams
// @Description Fetches all teams ordered by points
// @Tags team
// @Produce json
// @Success 200 {array} TeamResponse
// @Router /teams [get]
func (e *TeamController) getTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := e.teamService.GetTeams()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, Map(teams, toTeamResponse))
	}
}
