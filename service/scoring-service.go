package service

import (
	"fmt"
	"regexp"
	"time"

	"oasis/config"
	"oasis/metrics"
	"oasis/repository"

	"gorm.io/gorm"
)

var githubLinkPattern = regexp.MustCompile(`^https://github\.com/[\w-]+/[\w-]+`)

var ErrInvalidGithubLink = fmt.Errorf("invalid github link")

// ScoringService covers the two non-judge acceptance paths: flag verification
// and buildathon link submission. Both share the award transition with the
// grading engine.
type ScoringService struct {
	challengeRepository  *repository.ChallengeRepository
	submissionRepository *repository.SubmissionRepository
	teamRepository       *repository.TeamRepository
	publisher            *SubmissionPublisher
}

func NewScoringService(db *gorm.DB, publisher *SubmissionPublisher) *ScoringService {
	return &ScoringService{
		challengeRepository:  repository.NewChallengeRepository(db),
		submissionRepository: repository.NewSubmissionRepository(db),
		teamRepository:       repository.NewTeamRepository(db),
		publisher:            publisher,
	}
}

// SubmitFlag compares the submitted flag byte-for-byte against the stored
// challenge flag. The submission row is written either way; points are only
// granted on the first acceptance for the (team, challenge) pair.
func (e *ScoringService) SubmitFlag(teamId int, challengeId int, flag string) (bool, error) {
	challenge, err := e.challengeRepository.GetChallengeById(challengeId)
	if err != nil {
		return false, err
	}
	if _, err := e.teamRepository.GetTeamById(teamId); err != nil {
		return false, err
	}

	isCorrect := challenge.Flag == flag

	status := repository.StatusRejected
	points := 0
	if isCorrect {
		status = repository.StatusAccepted
		points = challenge.Points
	}
	submission := &repository.Submission{
		TeamId:        teamId,
		ChallengeId:   challengeId,
		Type:          repository.TypeAlgorithmic,
		Status:        status,
		FlagSubmitted: flag,
		Points:        points,
		SubmittedAt:   time.Now(),
	}
	if isCorrect {
		awarded, err := e.teamRepository.AwardChallenge(submission, challenge.Points)
		if err != nil {
			return false, err
		}
		if awarded {
			metrics.ChallengesAwardedCounter.Inc()
		}
	} else {
		if _, err := e.submissionRepository.SaveSubmission(submission); err != nil {
			return false, err
		}
	}
	e.publisher.Publish(submission)
	return isCorrect, nil
}

// SubmitBuildathon records a repository link for the buildathon phase. Links
// are auto-accepted once they match the github URL shape; the fixed buildathon
// point value is granted at most once per (team, challenge).
func (e *ScoringService) SubmitBuildathon(teamId int, challengeId int, githubLink string) (*repository.Submission, error) {
	if !githubLinkPattern.MatchString(githubLink) {
		return nil, ErrInvalidGithubLink
	}
	if _, err := e.challengeRepository.GetChallengeById(challengeId); err != nil {
		return nil, err
	}
	if _, err := e.teamRepository.GetTeamById(teamId); err != nil {
		return nil, err
	}

	points := config.Env().BuildathonPoints
	submission := &repository.Submission{
		TeamId:      teamId,
		ChallengeId: challengeId,
		Type:        repository.TypeBuildathon,
		Status:      repository.StatusAccepted,
		GithubLink:  githubLink,
		Points:      points,
		SubmittedAt: time.Now(),
	}
	awarded, err := e.teamRepository.AwardChallenge(submission, points)
	if err != nil {
		return nil, err
	}
	if awarded {
		metrics.ChallengesAwardedCounter.Inc()
	}
	e.publisher.Publish(submission)
	return submission, nil
}
