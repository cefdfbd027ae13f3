package controller

import (
	"oasis/auth"
	"oasis/repository"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminController struct {
	adminService *service.AdminService
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{
		adminService: service.NewAdminService(db),
	}
}

func setupAdminController(db *gorm.DB) []RouteInfo {
	e := NewAdminController(db)
	basePath := "/admin"
	routes := []RouteInfo{
		{Method: "POST", Path: "/auth", HandlerFunc: e.loginHandler()},
		{Method: "POST", Path: "/auth/logout", HandlerFunc: e.logoutHandler()},
		{Method: "GET", Path: "/dashboard", HandlerFunc: e.dashboardHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleAdmin}},
		{Method: "GET", Path: "/analytics", HandlerFunc: e.analyticsHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleAdmin}},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	routes = append(routes, setupAdminTeamController(db)...)
	routes = append(routes, setupAdminChallengeController(db)...)
	return routes
}

type AdminLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @id AdminLogin
// @Description Authenticates an administrator and sets the auth cookie
// @Tags admin
// @Accept json
// @Produce json
// @Param body body AdminLogin true "Credentials"
// @Success 200 {object} map[string]any
// @Router /admin/auth [post]
func (e *AdminController) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var login AdminLogin
		if err := c.BindJSON(&login); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		admin, token, err := e.adminService.Login(login.Username, login.Password)
		if err != nil {
			c.JSON(401, gin.H{"success": false, "error": "Invalid credentials"})
			return
		}
		c.SetCookie("auth", token, 60*60*24, "/", "", false, true)
		c.JSON(200, gin.H{
			"success": true,
			"token":   token,
			"admin": gin.H{
				"id":       admin.Id,
				"username": admin.Username,
				"email":    admin.Email,
				"fullName": admin.FullName,
			},
		})
	}
}

// @id AdminLogout
// @Description Clears the admin auth cookie
// @Tags admin
// @Success 200 {object} map[string]any
// @Router /admin/auth/logout [post]
func (e *AdminController) logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("auth", "", -1, "/", "", false, true)
		c.JSON(200, gin.H{"success": true})
	}
}

// @id AdminDashboard
// @Description Aggregated dashboard statistics
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /admin/dashboard [get]
func (e *AdminController) dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := e.adminService.GetDashboard()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{
			"totalTeams":       stats.TotalTeams,
			"activeChallenges": stats.ActiveChallenges,
			"totalSubmissions": stats.TotalSubmissions,
			"leaderboard":      Map(stats.Leaderboard, toLeaderboardEntry),
			"submissionStats": Map(stats.SubmissionsByType, func(count *repository.TypeCount) gin.H {
				return gin.H{"type": count.Type, "count": count.Count}
			}),
			"recentActivity":     Map(stats.RecentActivity, toSubmissionResponse),
			"registrationsByDay": stats.RegistrationsByDay,
		})
	}
}

// @id AdminAnalytics
// @Description Overview analytics with completion rate and top teams
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /admin/analytics [get]
func (e *AdminController) analyticsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		analytics, err := e.adminService.GetAnalytics()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{
			"overview": gin.H{
				"totalTeams":       analytics.TotalTeams,
				"activeChallenges": analytics.ActiveChallenges,
				"totalSubmissions": analytics.TotalSubmissions,
				"completionRate":   analytics.CompletionRate,
			},
			"topTeams": Map(analytics.TopTeams, toLeaderboardEntry),
		})
	}
}
