package controller

import (
	"strconv"

	"oasis/app_error"
	"oasis/auth"
	"oasis/repository"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminChallengeController struct {
	challengeService *service.ChallengeService
}

func NewAdminChallengeController(db *gorm.DB) *AdminChallengeController {
	return &AdminChallengeController{
		challengeService: service.NewChallengeService(db),
	}
}

func setupAdminChallengeController(db *gorm.DB) []RouteInfo {
	e := NewAdminChallengeController(db)
	basePath := "/admin/challenges"
	adminOnly := []auth.Role{auth.RoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getChallengesHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "POST", Path: "", HandlerFunc: e.createChallengeHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "GET", Path: "/:challenge_id", HandlerFunc: e.getChallengeHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/:challenge_id", HandlerFunc: e.updateChallengeHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/:challenge_id", HandlerFunc: e.deleteChallengeHandler(), Authenticated: true, RequiredRoles: adminOnly},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

type TestCaseCreate struct {
	Input    string `json:"input" binding:"required"`
	Expected string `json:"expected" binding:"required"`
	IsPublic bool   `json:"isPublic"`
}

type ChallengeCreate struct {
	Title              string           `json:"title" binding:"required"`
	Description        string           `json:"description" binding:"required"`
	SortOrder          int              `json:"order" binding:"required"`
	Points             int              `json:"points"`
	AlgorithmicProblem string           `json:"algorithmicProblem" binding:"required"`
	BuildathonProblem  *string          `json:"buildathonProblem"`
	Flag               string           `json:"flag" binding:"required"`
	IsActive           *bool            `json:"isActive"`
	TestCases          []TestCaseCreate `json:"testCases"`
}

func (c *ChallengeCreate) toModel() *repository.Challenge {
	points := c.Points
	if points == 0 {
		points = 100
	}
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	return &repository.Challenge{
		Title:              c.Title,
		Description:        c.Description,
		SortOrder:          c.SortOrder,
		Points:             points,
		AlgorithmicProblem: c.AlgorithmicProblem,
		BuildathonProblem:  c.BuildathonProblem,
		Flag:               c.Flag,
		IsActive:           isActive,
		TestCases: Map(c.TestCases, func(testCase TestCaseCreate) *repository.TestCase {
			return &repository.TestCase{
				Input:    testCase.Input,
				Expected: testCase.Expected,
				IsPublic: testCase.IsPublic,
			}
		}),
	}
}

// AdminChallengeResponse includes the flag and the full test case set.
type AdminChallengeResponse struct {
	Id                 int                      `json:"id"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	SortOrder          int                      `json:"order"`
	Points             int                      `json:"points"`
	AlgorithmicProblem string                   `json:"algorithmicProblem"`
	BuildathonProblem  *string                  `json:"buildathonProblem"`
	Flag               string                   `json:"flag"`
	IsActive           bool                     `json:"isActive"`
	TestCases          []*AdminTestCaseResponse `json:"testCases"`
}

type AdminTestCaseResponse struct {
	Id       int    `json:"id"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	IsPublic bool   `json:"isPublic"`
}

func toAdminChallengeResponse(challenge *repository.Challenge) *AdminChallengeResponse {
	return &AdminChallengeResponse{
		Id:                 challenge.Id,
		Title:              challenge.Title,
		Description:        challenge.Description,
		SortOrder:          challenge.SortOrder,
		Points:             challenge.Points,
		AlgorithmicProblem: challenge.AlgorithmicProblem,
		BuildathonProblem:  challenge.BuildathonProblem,
		Flag:               challenge.Flag,
		IsActive:           challenge.IsActive,
		TestCases: Map(challenge.TestCases, func(testCase *repository.TestCase) *AdminTestCaseResponse {
			return &AdminTestCaseResponse{
				Id:       testCase.Id,
				Input:    testCase.Input,
				Expected: testCase.Expected,
				IsPublic: testCase.IsPublic,
			}
		}),
	}
}

// @id AdminGetChallenges
// @Description Fetches challenges with pagination, search and active filter
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Title/description search"
// @Param isActive query bool false "Filter by active state"
// @Success 200 {object} map[string]any
// @Router /admin/challenges [get]
func (e *AdminChallengeController) getChallengesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := paginationParams(c)
		var isActive *bool
		if value, ok := c.GetQuery("isActive"); ok {
			parsed := value == "true"
			isActive = &parsed
		}
		challenges, total, err := e.challengeService.SearchChallenges(c.Query("search"), isActive, page, limit)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		withStats := make([]gin.H, 0, len(challenges))
		for _, challenge := range challenges {
			submissionCount, err := e.challengeService.CountSubmissions(challenge.Id)
			if err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			withStats = append(withStats, gin.H{
				"challenge":        toAdminChallengeResponse(challenge),
				"totalSubmissions": submissionCount,
			})
		}
		c.JSON(200, gin.H{
			"success": true,
			"data": gin.H{
				"challenges": withStats,
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

// @id AdminCreateChallenge
// @Description Creates a challenge. The ordering key must be unique.
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param body body ChallengeCreate true "Challenge to create"
// @Success 201 {object} AdminChallengeResponse
// @Router /admin/challenges [post]
func (e *AdminChallengeController) createChallengeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create ChallengeCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"success": false, "error": err.Error()})
			return
		}
		challenge, err := e.challengeService.CreateChallenge(create.toModel())
		if err != nil {
			if err == service.ErrSortOrderTaken {
				c.JSON(409, gin.H{"success": false, "error": err.Error()})
			} else {
				c.JSON(500, gin.H{"success": false, "error": err.Error()})
			}
			return
		}
		c.JSON(201, toAdminChallengeResponse(challenge))
	}
}

// @id AdminGetChallenge
// @Description Fetches a single challenge with flag and test cases
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param challenge_id path int true "Challenge Id"
// @Success 200 {object} AdminChallengeResponse
// @Router /admin/challenges/{challenge_id} [get]
func (e *AdminChallengeController) getChallengeHandler() gin.HandlerFunc {
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
		c.JSON(200, toAdminChallengeResponse(challenge))
	}
}

// @id AdminUpdateChallenge
// @Description Updates a challenge, replacing its test cases when provided
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param challenge_id path int true "Challenge Id"
// @Param body body ChallengeCreate true "Fields to update"
// @Success 200 {object} AdminChallengeResponse
// @Router /admin/challenges/{challenge_id} [put]
func (e *AdminChallengeController) updateChallengeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		challengeId, err := strconv.Atoi(c.Param("challenge_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update ChallengeCreate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"success": false, "error": err.Error()})
			return
		}
		challenge, err := e.challengeService.UpdateChallenge(challengeId, update.toModel())
		if err != nil {
			if err == service.ErrSortOrderTaken {
				c.JSON(409, gin.H{"success": false, "error": err.Error()})
			} else {
				app_error.Abort(c, err)
			}
			return
		}
		c.JSON(200, toAdminChallengeResponse(challenge))
	}
}

// @id AdminDeleteChallenge
// @Description Deletes a challenge and its test cases
// @Tags admin
// @Security BearerAuth
// @Param challenge_id path int true "Challenge Id"
// @Success 204
// @Router /admin/challenges/{challenge_id} [delete]
func (e *AdminChallengeController) deleteChallengeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		challengeId, err := strconv.Atoi(c.Param("challenge_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.challengeService.DeleteChallenge(challengeId); err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(204, nil)
	}
}
