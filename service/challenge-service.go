package service

import (
	"fmt"

	"oasis/repository"

	"gorm.io/gorm"
)

var ErrSortOrderTaken = fmt.Errorf("challenge with this order already exists")

type ChallengeService struct {
	challengeRepository  *repository.ChallengeRepository
	submissionRepository *repository.SubmissionRepository
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{
		challengeRepository:  repository.NewChallengeRepository(db),
		submissionRepository: repository.NewSubmissionRepository(db),
	}
}

func (e *ChallengeService) GetChallenges() ([]*repository.Challenge, error) {
	return e.challengeRepository.FindAll()
}

func (e *ChallengeService) GetChallengeById(challengeId int) (*repository.Challenge, error) {
	return e.challengeRepository.GetChallengeById(challengeId)
}

func (e *ChallengeService) CreateChallenge(challenge *repository.Challenge) (*repository.Challenge, error) {
	if _, err := e.challengeRepository.GetChallengeBySortOrder(challenge.SortOrder); err == nil {
		return nil, ErrSortOrderTaken
	}
	return e.challengeRepository.Save(challenge)
}

func (e *ChallengeService) UpdateChallenge(challengeId int, update *repository.Challenge) (*repository.Challenge, error) {
	challenge, err := e.challengeRepository.GetChallengeById(challengeId)
	if err != nil {
		return nil, err
	}
	if update.SortOrder != challenge.SortOrder {
		if existing, err := e.challengeRepository.GetChallengeBySortOrder(update.SortOrder); err == nil && existing.Id != challengeId {
			return nil, ErrSortOrderTaken
		}
	}
	challenge.Title = update.Title
	challenge.Description = update.Description
	challenge.SortOrder = update.SortOrder
	challenge.Points = update.Points
	challenge.AlgorithmicProblem = update.AlgorithmicProblem
	challenge.BuildathonProblem = update.BuildathonProblem
	challenge.Flag = update.Flag
	challenge.IsActive = update.IsActive
	challenge.TestCases = nil
	if _, err := e.challengeRepository.Save(challenge); err != nil {
		return nil, err
	}
	if update.TestCases != nil {
		if err := e.challengeRepository.ReplaceTestCases(challengeId, update.TestCases); err != nil {
			return nil, err
		}
	}
	return e.challengeRepository.GetChallengeById(challengeId)
}

func (e *ChallengeService) DeleteChallenge(challengeId int) error {
	if _, err := e.challengeRepository.GetChallengeById(challengeId); err != nil {
		return err
	}
	return e.challengeRepository.Delete(challengeId)
}

func (e *ChallengeService) SearchChallenges(search string, isActive *bool, page int, limit int) ([]*repository.Challenge, int64, error) {
	return e.challengeRepository.Search(search, isActive, page, limit)
}

func (e *ChallengeService) CountSubmissions(challengeId int) (int64, error) {
	return e.submissionRepository.CountForChallenge(challengeId)
}
