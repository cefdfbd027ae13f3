package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"oasis/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func protectedRouter(roles []auth.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(roles), func(c *gin.Context) {
		claims := getClaims(c)
		c.JSON(200, gin.H{"subjectId": claims.SubjectId})
	})
	return r
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	r := protectedRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))
	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	r := protectedRouter(nil)
	w := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/protected", nil)
	request.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, request)
	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	token, err := auth.CreateToken(7, auth.RoleTeam, "team7")
	assert.NoError(t, err)

	r := protectedRouter([]auth.Role{auth.RoleTeam})
	w := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, request)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"subjectId":7`)
}

func TestAuthMiddlewareAcceptsCookie(t *testing.T) {
	token, err := auth.CreateToken(7, auth.RoleTeam, "team7")
	assert.NoError(t, err)

	r := protectedRouter(nil)
	w := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/protected", nil)
	request.AddCookie(&http.Cookie{Name: "auth", Value: token})
	r.ServeHTTP(w, request)
	assert.Equal(t, 200, w.Code)
}

func TestAuthMiddlewareEnforcesRole(t *testing.T) {
	token, err := auth.CreateToken(7, auth.RoleTeam, "team7")
	assert.NoError(t, err)

	r := protectedRouter([]auth.Role{auth.RoleAdmin})
	w := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, request)
	assert.Equal(t, 403, w.Code)
}

func TestJudgeHandlerValidatesBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	controller := &JudgeController{}
	r.POST("/judge", controller.judgeHandler())

	// missing required source_code and language_id
	w := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/judge", strings.NewReader(`{"stdin":"1 2"}`))
	r.ServeHTTP(w, request)
	assert.Equal(t, 400, w.Code)
}

func TestJudgeHandlerRequiresChallengeAndTeamForGrading(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	controller := &JudgeController{}
	r.POST("/judge", controller.judgeHandler())

	// empty stdin selects the graded path, which needs challengeId and teamId
	w := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/judge", strings.NewReader(`{"source_code":"x","language_id":71}`))
	r.ServeHTTP(w, request)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "challengeId and teamId are required")
}

func TestJudgeHandlerRejectsSubmittingForAnotherTeam(t *testing.T) {
	token, err := auth.CreateToken(1, auth.RoleTeam, "team1")
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	controller := &JudgeController{}
	r.POST("/judge", AuthMiddleware([]auth.Role{auth.RoleTeam}), controller.judgeHandler())

	w := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/judge",
		strings.NewReader(`{"source_code":"x","language_id":71,"challengeId":1,"teamId":2}`))
	request.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, request)
	assert.Equal(t, 403, w.Code)
}
