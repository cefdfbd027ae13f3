package controller

import (
	"strconv"
	"time"

	"oasis/app_error"
	"oasis/auth"
	"oasis/repository"
	"oasis/service"
	"oasis/utils"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChallengeController struct {
	challengeService *service.ChallengeService
	scoringService   *service.ScoringService
}

func NewChallengeController(db *gorm.DB, publisher *service.SubmissionPublisher) *ChallengeController {
	return &ChallengeController{
		challengeService: service.NewChallengeService(db),
		scoringService:   service.NewScoringService(db, publisher),
	}
}

func setupChallengeController(db *gorm.DB, cacheStore persistence.CacheStore, publisher *service.SubmissionPublisher) []RouteInfo {
	e := NewChallengeController(db, publisher)
	basePath := "/challenges"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: cache.CachePage(cacheStore, 10*time.Second, e.getChallengesHandler())},
		{Method: "GET", Path: "/:challenge_id", HandlerFunc: e.getChallengeHandler()},
		{Method: "POST", Path: "/:challenge_id/submit-flag", HandlerFunc: e.submitFlagHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleTeam}},
		{Method: "POST", Path: "/:challenge_id/submit-buildathon", HandlerFunc: e.submitBuildathonHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleTeam}},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

// ChallengeResponse is the competitor view of a challenge. The flag and the
// hidden test cases never leave the server.
type ChallengeResponse struct {
	Id                 int                 `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	SortOrder          int                 `json:"order"`
	Points             int                 `json:"points"`
	AlgorithmicProblem string              `json:"algorithmicProblem"`
	BuildathonProblem  *string             `json:"buildathonProblem"`
	IsActive           bool                `json:"isActive"`
	PublicTestCases    []*TestCaseResponse `json:"publicTestCases,omitempty"`
}

type TestCaseResponse struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

func toChallengeResponse(challenge *repository.Challenge) *ChallengeResponse {
	publicCases := utils.Filter(challenge.TestCases, func(testCase *repository.TestCase) bool {
		return testCase.IsPublic
	})
	return &ChallengeResponse{
		Id:                 challenge.Id,
		Title:              challenge.Title,
		Description:        challenge.Description,
		SortOrder:          challenge.SortOrder,
		Points:             challenge.Points,
		AlgorithmicProblem: challenge.AlgorithmicProblem,
		BuildathonProblem:  challenge.BuildathonProblem,
		IsActive:           challenge.IsActive,
		PublicTestCases: Map(publicCases, func(testCase *repository.TestCase) *TestCaseResponse {
			return &TestCaseResponse{Input: testCase.Input, Expected: testCase.Expected}
		}),
	}
}

// @id GetChallenges
// @Description Fetches all challenges ordered by their sequence
// @Tags challenge
// @Produce json
// @Success 200 {array} ChallengeResponse
// @Router /challenges [get]
func (e *ChallengeController) getChallengesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		challenges, err := e.challengeService.GetChallenges()
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(200, Map(challenges, toChallengeResponse))
	}
}

// @id GetChallenge
// @Description Fetches a single challenge
// @Tags challenge
// @Produce json
// @Param challenge_id path int true "Challenge Id"
// @Success 200 {object} ChallengeResponse
// @Router /challenges/{challenge_id} [get]
func (e *ChallengeController) getChallengeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		challengeId, err := strconv.Atoi(c.Param("challenge_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		challenge, err := e.challengeService.GetChallengeById(challengeId)
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(200, toChallengeResponse(challenge))
	}
}

type FlagSubmission struct {
	TeamId int    `json:"teamId" binding:"required"`
	Flag   string `json:"flag" binding:"required"`
}

// @id SubmitFlag
// @Description Submits a flag for the algorithmic phase of a challenge
// @Tags challenge
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param challenge_id path int true "Challenge Id"
// @Param body body FlagSubmission true "Flag to submit"
// @Success 200 {object} map[string]any
// @Router /challenges/{challenge_id}/submit-flag [post]
func (e *ChallengeController) submitFlagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		challengeId, err := strconv.Atoi(c.Param("challenge_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var submission FlagSubmission
		if err := c.BindJSON(&submission); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		claims := getClaims(c)
		if claims == nil || claims.SubjectId != submission.TeamId {
			c.JSON(403, gin.H{"error": "cannot submit for another team"})
			return
		}
		isCorrect, err := e.scoringService.SubmitFlag(submission.TeamId, challengeId, submission.Flag)
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "isCorrect": isCorrect})
	}
}

type BuildathonSubmission struct {
	TeamId     int    `json:"teamId" binding:"required"`
	GithubLink string `json:"githubLink" binding:"required"`
}

// @id SubmitBuildathon
// @Description Submits a repository link for the buildathon phase
// @Tags challenge
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param challenge_id path int true "Challenge Id"
// @Param body body BuildathonSubmission true "Repository link"
// @Success 200 {object} map[string]any
// @Router /challenges/{challenge_id}/submit-buildathon [post]
func (e *ChallengeController) submitBuildathonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		challengeId, err := strconv.Atoi(c.Param("challenge_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var submission BuildathonSubmission
		if err := c.BindJSON(&submission); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		claims := getClaims(c)
		if claims == nil || claims.SubjectId != submission.TeamId {
			c.JSON(403, gin.H{"error": "cannot submit for another team"})
			return
		}
		_, err = e.scoringService.SubmitBuildathon(submission.TeamId, challengeId, submission.GithubLink)
		if err != nil {
			if err == service.ErrInvalidGithubLink {
				c.JSON(400, gin.H{"success": false, "error": "Invalid GitHub link"})
			} else {
				app_error.Abort(c, err)
			}
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}
