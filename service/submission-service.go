package service

import (
	"fmt"

	"oasis/metrics"
	"oasis/repository"

	"gorm.io/gorm"
)

var ErrInvalidStatus = fmt.Errorf("status must be ACCEPTED or REJECTED")

type SubmissionService struct {
	submissionRepository *repository.SubmissionRepository
	teamRepository       *repository.TeamRepository
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{
		submissionRepository: repository.NewSubmissionRepository(db),
		teamRepository:       repository.NewTeamRepository(db),
	}
}

func (e *SubmissionService) GetRecentSubmissions(limit int) ([]*repository.Submission, error) {
	return e.submissionRepository.GetRecent(limit)
}

func (e *SubmissionService) GetSubmissionById(id int) (*repository.Submission, error) {
	return e.submissionRepository.GetSubmissionById(id)
}

// ReviewSubmission lets an admin overrule a submission status. Flipping a
// submission to ACCEPTED runs the shared award transition, which grants the
// challenge points only if the team was not already awarded for that
// (challenge, type) pair. Rejecting never claws points back; score corrections
// are a separate manual action.
func (e *SubmissionService) ReviewSubmission(submissionId int, status repository.SubmissionStatus) (*repository.Submission, error) {
	if status != repository.StatusAccepted && status != repository.StatusRejected {
		return nil, ErrInvalidStatus
	}
	submission, err := e.submissionRepository.GetSubmissionById(submissionId)
	if err != nil {
		return nil, err
	}
	if submission.Status == status {
		return submission, nil
	}
	// a rejected submission carries zero points, take the award value from the challenge
	points := submission.Points
	if points == 0 && submission.Challenge != nil {
		points = submission.Challenge.Points
	}
	// detach preloaded associations before saving
	submission.Team = nil
	submission.Challenge = nil

	if status == repository.StatusAccepted {
		submission.Status = repository.StatusAccepted
		submission.Points = points
		awarded, err := e.teamRepository.AwardChallenge(submission, points)
		if err != nil {
			return nil, err
		}
		if awarded {
			metrics.ChallengesAwardedCounter.Inc()
		}
		return submission, nil
	}
	submission.Status = repository.StatusRejected
	return e.submissionRepository.SaveSubmission(submission)
}
