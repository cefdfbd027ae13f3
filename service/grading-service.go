package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"oasis/client"
	"oasis/metrics"
	"oasis/repository"

	"gorm.io/gorm"
)

// JudgeExecutor is the surface of the Judge0 client the grading engine needs.
type JudgeExecutor interface {
	Execute(ctx context.Context, sourceCode string, languageId int, stdin string) (*client.JudgeResult, error)
}

type TestResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Output   string `json:"output"`
	Passed   bool   `json:"passed"`
	// Error distinguishes "we could not run your code" from a wrong answer.
	Error string `json:"error,omitempty"`
}

type GradeResult struct {
	SubmissionId int
	Status       repository.SubmissionStatus
	TestResults  []*TestResult
}

type GradingService struct {
	judge                JudgeExecutor
	challengeRepository  *repository.ChallengeRepository
	submissionRepository *repository.SubmissionRepository
	teamRepository       *repository.TeamRepository
	publisher            *SubmissionPublisher
}

func NewGradingService(db *gorm.DB, judge JudgeExecutor, publisher *SubmissionPublisher) *GradingService {
	return &GradingService{
		judge:                judge,
		challengeRepository:  repository.NewChallengeRepository(db),
		submissionRepository: repository.NewSubmissionRepository(db),
		teamRepository:       repository.NewTeamRepository(db),
		publisher:            publisher,
	}
}

// RunManual executes code against caller-supplied stdin and returns the raw
// judge output. Dry-run only: nothing is persisted and no score changes.
func (e *GradingService) RunManual(ctx context.Context, sourceCode string, languageId int, stdin string) (*client.JudgeResult, error) {
	return e.judge.Execute(ctx, sourceCode, languageId, stdin)
}

// RunTestCases grades the source against every test case in order. A judge
// failure marks that case as failed and grading moves on to the next case, so
// a partial judge outage degrades to rejections instead of aborting the run.
func (e *GradingService) RunTestCases(ctx context.Context, sourceCode string, languageId int, testCases []*repository.TestCase) ([]*TestResult, bool) {
	allPassed := true
	testResults := make([]*TestResult, 0, len(testCases))
	for _, testCase := range testCases {
		testResult := &TestResult{
			Input:    testCase.Input,
			Expected: testCase.Expected,
		}
		result, err := e.judge.Execute(ctx, sourceCode, languageId, testCase.Input)
		if err != nil {
			testResult.Error = "could not grade this test case"
		} else {
			testResult.Output = result.Output()
			testResult.Passed = strings.TrimSpace(testResult.Output) == strings.TrimSpace(testCase.Expected)
		}
		if !testResult.Passed {
			allPassed = false
		}
		testResults = append(testResults, testResult)
	}
	if len(testCases) == 0 {
		// a challenge without test cases cannot be auto-accepted
		allPassed = false
	}
	return testResults, allPassed
}

// Grade runs a full graded submission: every test case is judged, exactly one
// ALGORITHMIC submission row is written with the serialized per-case results,
// and on full acceptance the shared award transition grants the challenge
// points at most once.
func (e *GradingService) Grade(ctx context.Context, teamId int, challengeId int, sourceCode string, languageId int) (*GradeResult, error) {
	challenge, err := e.challengeRepository.GetChallengeById(challengeId)
	if err != nil {
		return nil, err
	}
	if _, err := e.teamRepository.GetTeamById(teamId); err != nil {
		return nil, err
	}

	// stored order, so reported results line up run after run
	testCases, err := e.challengeRepository.GetTestCases(challengeId)
	if err != nil {
		return nil, err
	}
	testResults, allPassed := e.RunTestCases(ctx, sourceCode, languageId, testCases)
	output, err := json.Marshal(testResults)
	if err != nil {
		return nil, err
	}

	status := repository.StatusRejected
	points := 0
	if allPassed {
		status = repository.StatusAccepted
		points = challenge.Points
	}
	submission := &repository.Submission{
		TeamId:      teamId,
		ChallengeId: challengeId,
		Type:        repository.TypeAlgorithmic,
		Status:      status,
		Code:        sourceCode,
		LanguageId:  languageId,
		Output:      string(output),
		Points:      points,
		SubmittedAt: time.Now(),
	}
	if allPassed {
		awarded, err := e.teamRepository.AwardChallenge(submission, challenge.Points)
		if err != nil {
			return nil, err
		}
		if awarded {
			metrics.ChallengesAwardedCounter.Inc()
		}
	} else {
		if _, err := e.submissionRepository.SaveSubmission(submission); err != nil {
			return nil, err
		}
	}
	metrics.SubmissionsGradedCounter.WithLabelValues(status).Inc()
	e.publisher.Publish(submission)

	return &GradeResult{
		SubmissionId: submission.Id,
		Status:       status,
		TestResults:  testResults,
	}, nil
}
