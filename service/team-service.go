package service

import (
	"fmt"
	"time"

	"oasis/auth"
	"oasis/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

type TeamService struct {
	teamRepository       *repository.TeamRepository
	submissionRepository *repository.SubmissionRepository
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{
		teamRepository:       repository.NewTeamRepository(db),
		submissionRepository: repository.NewSubmissionRepository(db),
	}
}

func (e *TeamService) Signup(name string, email string, password string, members []string) (*repository.Team, error) {
	if _, err := e.teamRepository.GetTeamByNameOrEmail(name, email); err == nil {
		return nil, fmt.Errorf("team with this name or email already exists")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	team := &repository.Team{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Members:  members,
	}
	return e.teamRepository.Save(team)
}

func (e *TeamService) Login(email string, password string) (*repository.Team, string, error) {
	team, err := e.teamRepository.GetTeamByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(team.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.CreateToken(team.Id, auth.RoleTeam, team.Name)
	if err != nil {
		return nil, "", err
	}
	return team, token, nil
}

func (e *TeamService) GetTeamById(teamId int) (*repository.Team, error) {
	return e.teamRepository.GetTeamById(teamId)
}

func (e *TeamService) GetTeams() ([]*repository.Team, error) {
	return e.teamRepository.FindAll()
}

func (e *TeamService) GetLeaderboard(limit int) ([]*repository.Team, error) {
	return e.teamRepository.GetLeaderboard(limit)
}

func (e *TeamService) SearchTeams(search string, sortBy string, order string, page int, limit int) ([]*repository.Team, int64, error) {
	allowedSort := map[string]bool{"points": true, "name": true, "created_at": true, "current_challenge": true}
	if !allowedSort[sortBy] {
		sortBy = "points"
	}
	if order != "asc" {
		order = "desc"
	}
	return e.teamRepository.Search(search, sortBy, order, page, limit)
}

func (e *TeamService) CreateTeam(name string, email string, password string, members []string) (*repository.Team, error) {
	return e.Signup(name, email, password, members)
}

func (e *TeamService) UpdateTeam(teamId int, name string, email string, members []string) (*repository.Team, error) {
	team, err := e.teamRepository.GetTeamById(teamId)
	if err != nil {
		return nil, err
	}
	if name != "" {
		team.Name = name
	}
	if email != "" {
		team.Email = email
	}
	if members != nil {
		team.Members = members
	}
	return e.teamRepository.Save(team)
}

func (e *TeamService) DeleteTeam(teamId int) error {
	return e.teamRepository.Delete(teamId)
}

func (e *TeamService) GetTeamSubmissions(teamId int) ([]*repository.Submission, error) {
	return e.submissionRepository.GetForTeam(teamId)
}

func (e *TeamService) SetGithubLogin(teamId int, githubLogin string) (*repository.Team, error) {
	team, err := e.teamRepository.GetTeamById(teamId)
	if err != nil {
		return nil, err
	}
	team.GithubLogin = &githubLogin
	return e.teamRepository.Save(team)
}

func (e *TeamService) RegistrationsByDay(days int) (map[string]int, error) {
	since := time.Now().AddDate(0, 0, -days)
	teams, err := e.teamRepository.CountRegisteredSince(since)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]int)
	for _, team := range teams {
		byDay[team.CreatedAt.Format("2006-01-02")]++
	}
	return byDay, nil
}
