package controller

import (
	"oasis/app_error"
	"oasis/auth"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OauthController struct {
	oauthService *service.OauthService
}

func NewOauthController(db *gorm.DB) *OauthController {
	return &OauthController{
		oauthService: service.NewOauthService(db),
	}
}

func setupOauthController(db *gorm.DB) []RouteInfo {
	e := NewOauthController(db)
	basePath := "/oauth/github"
	routes := []RouteInfo{
		{Method: "GET", Path: "/redirect", HandlerFunc: e.redirectHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleTeam}},
		{Method: "GET", Path: "/callback", HandlerFunc: e.callbackHandler()},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

// @id GithubRedirect
// @Description Starts the github account linking flow for the current team
// @Tags oauth
// @Security BearerAuth
// @Param redirect query string false "Path to return to after linking"
// @Success 302
// @Router /oauth/github/redirect [get]
func (e *OauthController) redirectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getClaims(c)
		if claims == nil {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			return
		}
		redirect := c.Query("redirect")
		if redirect == "" {
			redirect = "/"
		}
		url, err := e.oauthService.GetRedirectUrl(claims.SubjectId, redirect)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Redirect(302, url)
	}
}

// @id GithubCallback
// @Description Completes the github account linking flow
// @Tags oauth
// @Param code query string true "Authorization code"
// @Param state query string true "Oauth state"
// @Success 302
// @Router /oauth/github/callback [get]
func (e *OauthController) callbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		state := c.Query("state")
		if code == "" || state == "" {
			c.JSON(400, gin.H{"error": "code and state are required"})
			return
		}
		redirect, err := e.oauthService.HandleCallback(c.Request.Context(), code, state)
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.Redirect(302, redirect)
	}
}
