package controller

import (
	"strconv"
	"time"

	"oasis/app_error"
	"oasis/auth"
	"oasis/repository"
	"oasis/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubmissionController struct {
	submissionService *service.SubmissionService
}

func NewSubmissionController(db *gorm.DB) *SubmissionController {
	return &SubmissionController{
		submissionService: service.NewSubmissionService(db),
	}
}

func setupSubmissionController(db *gorm.DB) []RouteInfo {
	e := NewSubmissionController(db)
	basePath := "/admin/submissions"
	adminOnly := []auth.Role{auth.RoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getSubmissionsHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/:submission_id", HandlerFunc: e.reviewSubmissionHandler(), Authenticated: true, RequiredRoles: adminOnly},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

type SubmissionResponse struct {
	Id          int       `json:"id"`
	TeamId      int       `json:"teamId"`
	TeamName    string    `json:"teamName,omitempty"`
	ChallengeId int       `json:"challengeId"`
	Challenge   string    `json:"challengeTitle,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	GithubLink  string    `json:"githubLink,omitempty"`
	Points      int       `json:"points"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func toSubmissionResponse(submission *repository.Submission) *SubmissionResponse {
	response := &SubmissionResponse{
		Id:          submission.Id,
		TeamId:      submission.TeamId,
		ChallengeId: submission.ChallengeId,
		Type:        submission.Type,
		Status:      submission.Status,
		GithubLink:  submission.GithubLink,
		Points:      submission.Points,
		SubmittedAt: submission.SubmittedAt,
	}
	if submission.Team != nil {
		response.TeamName = submission.Team.Name
	}
	if submission.Challenge != nil {
		response.Challenge = submission.Challenge.Title
	}
	return response
}

// @id GetRecentSubmissions
// @Description Fetches the most recent submissions
// @Tags submission
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Number of submissions to return"
// @Success 200 {array} SubmissionResponse
// @Router /admin/submissions [get]
func (e *SubmissionController) getSubmissionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 5
		}
		submissions, err := e.submissionService.GetRecentSubmissions(limit)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"submissions": Map(submissions, toSubmissionResponse)})
	}
}

type SubmissionReview struct {
	Status string `json:"status" binding:"required"`
}

// @id ReviewSubmission
// @Description Overrules a submission status. Accepting a submission runs the
// @Description idempotent award transition.
// @Tags submission
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param submission_id path int true "Submission Id"
// @Param body body SubmissionReview true "New status"
// @Success 200 {object} SubmissionResponse
// @Router /admin/submissions/{submission_id} [put]
func (e *SubmissionController) reviewSubmissionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		submissionId, err := strconv.Atoi(c.Param("submission_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var review SubmissionReview
		if err := c.BindJSON(&review); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		submission, err := e.submissionService.ReviewSubmission(submissionId, review.Status)
		if err != nil {
			if err == service.ErrInvalidStatus {
				c.JSON(400, gin.H{"error": "Invalid status"})
			} else {
				app_error.Abort(c, err)
			}
			return
		}
		c.JSON(200, toSubmissionResponse(submission))
	}
}
