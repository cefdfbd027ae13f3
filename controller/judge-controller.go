package controller

import (
	"strings"

	"oasis/app_error"
	"oasis/auth"
	"oasis/client"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type JudgeController struct {
	gradingService *service.GradingService
}

func NewJudgeController(db *gorm.DB, publisher *service.SubmissionPublisher) *JudgeController {
	return &JudgeController{
		gradingService: service.NewGradingService(db, client.NewJudge0Client(), publisher),
	}
}

func setupJudgeController(db *gorm.DB, publisher *service.SubmissionPublisher) []RouteInfo {
	e := NewJudgeController(db, publisher)
	return []RouteInfo{
		{Method: "POST", Path: "/judge", HandlerFunc: e.judgeHandler(), Authenticated: true, RequiredRoles: []auth.Role{auth.RoleTeam}},
	}
}

type JudgeRequest struct {
	SourceCode  string `json:"source_code" binding:"required"`
	LanguageId  int    `json:"language_id" binding:"required"`
	Stdin       string `json:"stdin"`
	ChallengeId int    `json:"challengeId"`
	TeamId      int    `json:"teamId"`
}

type ManualRunResponse struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Output        string `json:"output"`
}

type GradeResponse struct {
	SubmissionId int                   `json:"submissionId"`
	TestResults  []*service.TestResult `json:"testResults"`
	Status       string                `json:"status"`
}

// @id Judge
// @Description Runs submitted code. With a non-empty stdin this is a dry run
// @Description returning raw judge output; otherwise the code is graded
// @Description against all test cases and a submission is recorded.
// @Tags judge
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param body body JudgeRequest true "Code to run"
// @Success 200 {object} GradeResponse
// @Router /judge [post]
func (e *JudgeController) judgeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request JudgeRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// manual run: no persistence, no scoring
		if strings.TrimSpace(request.Stdin) != "" {
			result, err := e.gradingService.RunManual(c.Request.Context(), request.SourceCode, request.LanguageId, request.Stdin)
			if err != nil {
				c.JSON(502, gin.H{"error": "could not reach judge service"})
				return
			}
			c.JSON(200, ManualRunResponse{
				Stdout:        result.Stdout,
				Stderr:        result.Stderr,
				CompileOutput: result.CompileOutput,
				Output:        result.Output(),
			})
			return
		}

		if request.ChallengeId == 0 || request.TeamId == 0 {
			c.JSON(400, gin.H{"error": "challengeId and teamId are required"})
			return
		}
		claims := getClaims(c)
		if claims == nil || claims.SubjectId != request.TeamId {
			c.JSON(403, gin.H{"error": "cannot submit for another team"})
			return
		}

		result, err := e.gradingService.Grade(c.Request.Context(), request.TeamId, request.ChallengeId, request.SourceCode, request.LanguageId)
		if err != nil {
			app_error.Abort(c, err)
			return
		}
		c.JSON(200, GradeResponse{
			SubmissionId: result.SubmissionId,
			TestResults:  result.TestResults,
			Status:       result.Status,
		})
	}
}
