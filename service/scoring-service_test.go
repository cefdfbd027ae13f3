package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"oasis/config"
	"oasis/repository"

	"gorm.io/driver/postgres"
	_ "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
)

var db *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.Run("postgres", "17.2-alpine", []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=postgres", "DATABASE_NAME=postgres"})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(600) // Tell docker to hard kill the container in 10 minutes
	sqlInfo := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=postgres dbname=postgres sslmode=disable search_path=oasis",
		resource.GetPort("5432/tcp"))

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	if err := pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(sqlInfo), &gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				TablePrefix:   "oasis.",
				SingularTable: false,
			},
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}
		return config.Migrate(db)
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	// as of go1.15 testing.M returns the exit code of m.Run(), so it is safe to use defer here
	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}()
	m.Run()
}

func TearDown() {
	db.Exec("DELETE FROM oasis.submissions")
	db.Exec("DELETE FROM oasis.test_cases")
	db.Exec("DELETE FROM oasis.challenges")
	db.Exec("DELETE FROM oasis.teams")
	db.Exec("DELETE FROM oasis.admins")
}

func SetUp() (*repository.Team, *repository.Challenge) {
	team := &repository.Team{
		Name:     "team1",
		Email:    "team1@example.com",
		Password: "hashed",
		Members:  []string{"alice", "bob"},
	}
	if err := db.Create(team).Error; err != nil {
		log.Fatalf("Error creating team: %v", err)
	}
	challenge := &repository.Challenge{
		Title:              "challenge1",
		Description:        "first challenge",
		SortOrder:          1,
		Points:             100,
		AlgorithmicProblem: "sum two numbers",
		Flag:               "OASIS{correct-flag}",
		IsActive:           true,
		TestCases: []*repository.TestCase{
			{Input: "1 2", Expected: "3", IsPublic: true},
			{Input: "4 5", Expected: "9"},
		},
	}
	if err := db.Create(challenge).Error; err != nil {
		log.Fatalf("Error creating challenge: %v", err)
	}
	return team, challenge
}

func reloadTeam(t *testing.T, teamId int) *repository.Team {
	team, err := repository.NewTeamRepository(db).GetTeamById(teamId)
	assert.NoError(t, err)
	return team
}

func TestSubmitFlagCorrect(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "OASIS{correct-flag}")
	assert.NoError(t, err)
	assert.True(t, isCorrect)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 100, updated.Points)
	assert.Equal(t, 1, updated.CurrentChallenge)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 1)
	assert.Equal(t, repository.StatusAccepted, submissions[0].Status)
	assert.Equal(t, 100, submissions[0].Points)
}

func TestSubmitFlagExactMatchOnly(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	// near misses: case, whitespace, partial
	for _, flag := range []string{"oasis{correct-flag}", " OASIS{correct-flag}", "OASIS{correct-flag} ", "OASIS{correct"} {
		isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, flag)
		assert.NoError(t, err)
		assert.False(t, isCorrect, "flag %q should not match", flag)
	}

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 0, updated.Points, "wrong flags never score")
	assert.Equal(t, 0, updated.CurrentChallenge)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 4, "every attempt is persisted, correct or not")
	for _, submission := range submissions {
		assert.Equal(t, repository.StatusRejected, submission.Status)
	}
}

func TestSubmitFlagAwardsAtMostOnce(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	for range 3 {
		isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "OASIS{correct-flag}")
		assert.NoError(t, err)
		assert.True(t, isCorrect)
	}

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 100, updated.Points, "resubmitting a correct flag never double-awards")
	assert.Equal(t, 1, updated.CurrentChallenge)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 3, "every attempt is still recorded")
	totalRecorded := 0
	for _, submission := range submissions {
		totalRecorded += submission.Points
	}
	assert.Equal(t, 100, totalRecorded, "only the awarding submission records points")
}

func TestSubmitFlagConcurrentAwardsOnce(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	// two-tabs scenario: simultaneous correct flags must credit exactly once
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "OASIS{correct-flag}")
			assert.NoError(t, err)
			assert.True(t, isCorrect)
		}()
	}
	wg.Wait()

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 100, updated.Points)
	assert.Equal(t, 1, updated.CurrentChallenge)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 8)
	totalRecorded := 0
	for _, submission := range submissions {
		totalRecorded += submission.Points
	}
	assert.Equal(t, 100, totalRecorded)
}

func TestSubmitBuildathonRejectsBadLink(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	_, err := scoring.SubmitBuildathon(team.Id, challenge.Id, "https://gitlab.com/user/repo")
	assert.ErrorIs(t, err, ErrInvalidGithubLink)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Empty(t, submissions, "rejected links leave no submission row")
	assert.Equal(t, 0, reloadTeam(t, team.Id).Points)
}

func TestSubmitBuildathonAwards(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	submission, err := scoring.SubmitBuildathon(team.Id, challenge.Id, "https://github.com/team1/project")
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusAccepted, submission.Status)
	assert.Equal(t, repository.TypeBuildathon, submission.Type)
	assert.Equal(t, 50, submission.Points)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 50, updated.Points)
	assert.Equal(t, 1, updated.CurrentChallenge)

	// resubmission stores a new row but does not award again
	resubmission, err := scoring.SubmitBuildathon(team.Id, challenge.Id, "https://github.com/team1/project-v2")
	assert.NoError(t, err)
	assert.Equal(t, 0, resubmission.Points, "a non-awarding row records no points")
	assert.Equal(t, 50, reloadTeam(t, team.Id).Points)
}

func TestFlagAndBuildathonAwardIndependently(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "OASIS{correct-flag}")
	assert.NoError(t, err)
	assert.True(t, isCorrect)

	_, err = scoring.SubmitBuildathon(team.Id, challenge.Id, "https://github.com/team1/project")
	assert.NoError(t, err)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 150, updated.Points, "algorithmic and buildathon phases each award once")
	assert.Equal(t, 2, updated.CurrentChallenge)
}

func TestSubmitFlagUnknownChallenge(t *testing.T) {
	team, _ := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})

	_, err := scoring.SubmitFlag(team.Id, 9999, "OASIS{correct-flag}")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGradeAllPassAwards(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	judge := &fakeJudge{outputs: map[string]string{
		"1 2": "3",
		"4 5": "9",
	}}
	grading := NewGradingService(db, judge, &SubmissionPublisher{})

	result, err := grading.Grade(context.Background(), team.Id, challenge.Id, "code", 71)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusAccepted, result.Status)
	assert.Len(t, result.TestResults, 2)
	assert.Equal(t, "1 2", result.TestResults[0].Input, "results follow stored test case order")
	assert.Equal(t, "4 5", result.TestResults[1].Input)
	assert.NotZero(t, result.SubmissionId)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 100, updated.Points)
	assert.Equal(t, 1, updated.CurrentChallenge)
}

func TestGradeHiddenCaseFailureRejects(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	// passes the public case, fails the hidden one
	judge := &fakeJudge{outputs: map[string]string{
		"1 2": "3",
		"4 5": "10",
	}}
	grading := NewGradingService(db, judge, &SubmissionPublisher{})

	result, err := grading.Grade(context.Background(), team.Id, challenge.Id, "code", 71)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusRejected, result.Status)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 0, updated.Points, "partial passes score nothing")
	assert.Equal(t, 0, updated.CurrentChallenge)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 1)
	assert.Contains(t, submissions[0].Output, `"passed":false`)
}

func TestGradeThenFlagAwardsOnce(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	judge := &fakeJudge{outputs: map[string]string{
		"1 2": "3",
		"4 5": "9",
	}}
	grading := NewGradingService(db, judge, &SubmissionPublisher{})
	scoring := NewScoringService(db, &SubmissionPublisher{})

	_, err := grading.Grade(context.Background(), team.Id, challenge.Id, "code", 71)
	assert.NoError(t, err)

	// both paths produce ALGORITHMIC acceptances, so the second one is a no-op award
	isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "OASIS{correct-flag}")
	assert.NoError(t, err)
	assert.True(t, isCorrect)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 100, updated.Points)
	assert.Equal(t, 1, updated.CurrentChallenge)
}

func TestTestCasesKeepStoredOrder(t *testing.T) {
	_, challenge := SetUp()
	defer TearDown()
	// later additions get higher ids and must sort last
	extra := []*repository.TestCase{
		{ChallengeId: challenge.Id, Input: "7 1", Expected: "8"},
		{ChallengeId: challenge.Id, Input: "9 1", Expected: "10"},
	}
	assert.NoError(t, db.Create(&extra).Error)

	testCases, err := repository.NewChallengeRepository(db).GetTestCases(challenge.Id)
	assert.NoError(t, err)
	inputs := make([]string, 0, len(testCases))
	for _, testCase := range testCases {
		inputs = append(inputs, testCase.Input)
	}
	assert.Equal(t, []string{"1 2", "4 5", "7 1", "9 1"}, inputs)

	reloaded, err := repository.NewChallengeRepository(db).GetChallengeById(challenge.Id)
	assert.NoError(t, err)
	assert.Equal(t, "1 2", reloaded.TestCases[0].Input, "preloaded cases keep the same order")
}

func TestReviewSubmissionAcceptAwards(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})
	submissionService := NewSubmissionService(db)

	isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "wrong")
	assert.NoError(t, err)
	assert.False(t, isCorrect)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 1)

	reviewed, err := submissionService.ReviewSubmission(submissions[0].Id, repository.StatusAccepted)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusAccepted, reviewed.Status)

	updated := reloadTeam(t, team.Id)
	assert.Equal(t, 100, updated.Points, "manual acceptance grants the challenge points")
	assert.Equal(t, 1, updated.CurrentChallenge)
}

func TestReviewSubmissionRejectKeepsPoints(t *testing.T) {
	team, challenge := SetUp()
	defer TearDown()
	scoring := NewScoringService(db, &SubmissionPublisher{})
	submissionService := NewSubmissionService(db)

	isCorrect, err := scoring.SubmitFlag(team.Id, challenge.Id, "OASIS{correct-flag}")
	assert.NoError(t, err)
	assert.True(t, isCorrect)

	submissions, err := repository.NewSubmissionRepository(db).GetForTeam(team.Id)
	assert.NoError(t, err)
	assert.Len(t, submissions, 1)

	reviewed, err := submissionService.ReviewSubmission(submissions[0].Id, repository.StatusRejected)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusRejected, reviewed.Status)

	assert.Equal(t, 100, reloadTeam(t, team.Id).Points, "rejecting never claws points back")
}

func TestReviewSubmissionInvalidStatus(t *testing.T) {
	submissionService := NewSubmissionService(db)
	_, err := submissionService.ReviewSubmission(1, "PENDING")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestLeaderboardOrdering(t *testing.T) {
	defer TearDown()
	teams := []*repository.Team{
		{Name: "low", Email: "low@example.com", Password: "x", Members: []string{}, Points: 50, CreatedAt: time.Now()},
		{Name: "high", Email: "high@example.com", Password: "x", Members: []string{}, Points: 200, CreatedAt: time.Now()},
		{Name: "tie-early", Email: "tie-early@example.com", Password: "x", Members: []string{}, Points: 100, CreatedAt: time.Now().Add(-time.Hour)},
		{Name: "tie-late", Email: "tie-late@example.com", Password: "x", Members: []string{}, Points: 100, CreatedAt: time.Now()},
	}
	for _, team := range teams {
		assert.NoError(t, db.Create(team).Error)
	}

	leaderboard, err := NewTeamService(db).GetLeaderboard(0)
	assert.NoError(t, err)
	assert.Len(t, leaderboard, 4)
	assert.Equal(t, "high", leaderboard[0].Name)
	assert.Equal(t, "tie-early", leaderboard[1].Name, "earlier registration wins the tie")
	assert.Equal(t, "tie-late", leaderboard[2].Name)
	assert.Equal(t, "low", leaderboard[3].Name)
}

func TestSignupAndLogin(t *testing.T) {
	defer TearDown()
	teamService := NewTeamService(db)

	team, err := teamService.Signup("crew", "crew@example.com", "hunter22", []string{"parzival"})
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter22", team.Password, "passwords are stored hashed")

	_, err = teamService.Signup("crew", "other@example.com", "hunter22", nil)
	assert.Error(t, err, "duplicate team names are rejected")

	logged, token, err := teamService.Login("crew@example.com", "hunter22")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, team.Id, logged.Id)

	_, _, err = teamService.Login("crew@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	defer TearDown()
	adminService := NewAdminService(db)

	admin, err := adminService.CreateAdmin("root", "sorrento", "root@oasis.local", "Root Admin")
	assert.NoError(t, err)
	assert.True(t, admin.IsActive)

	logged, token, err := adminService.Login("root", "sorrento")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, admin.Id, logged.Id)

	stored, err := repository.NewAdminRepository(db).GetAdminById(admin.Id)
	assert.NoError(t, err)
	assert.NotNil(t, stored.LastLogin, "login stamps last_login")

	_, _, err = adminService.Login("root", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLifecycle(t *testing.T) {
	defer TearDown()
	adminService := NewAdminService(db)

	_, err := adminService.CreateAdmin("ops", "first-pass", "ops@oasis.local", "Ops Admin")
	assert.NoError(t, err)
	_, err = adminService.CreateAdmin("ops", "other", "ops2@oasis.local", "Ops Again")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// deactivated admins cannot log in
	_, err = adminService.SetAdminActive("ops", false)
	assert.NoError(t, err)
	_, _, err = adminService.Login("ops", "first-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = adminService.SetAdminActive("ops", true)
	assert.NoError(t, err)
	_, _, err = adminService.Login("ops", "first-pass")
	assert.NoError(t, err)

	_, err = adminService.ResetAdminPassword("ops", "second-pass")
	assert.NoError(t, err)
	_, _, err = adminService.Login("ops", "first-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = adminService.Login("ops", "second-pass")
	assert.NoError(t, err)

	admins, err := adminService.ListAdmins()
	assert.NoError(t, err)
	assert.Len(t, admins, 1)
	assert.True(t, admins[0].IsActive)
}
